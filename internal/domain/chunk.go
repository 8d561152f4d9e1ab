package domain

// ChunkMetadata is attached to every indexed chunk.
type ChunkMetadata struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published_str"`
}

// IndexedChunk is one overlapping slice of an article's text in the vector store.
// ID is derived from the link and the chunk's start offset, so re-indexing overwrites.
type IndexedChunk struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  ChunkMetadata
}

// ChunkMatch is a retrieved chunk ranked by similarity (lower distance is closer).
type ChunkMatch struct {
	ID       string
	Text     string
	Metadata ChunkMetadata
	Distance float64
}
