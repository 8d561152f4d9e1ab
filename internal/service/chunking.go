package service

// ChunkConfig controls how article text is split for the vector store.
type ChunkConfig struct {
	Size     int
	Overlap  int
	MinRunes int
}

// DefaultChunkConfig gives 1000-rune chunks starting every 900 runes.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:     1000,
		Overlap:  100,
		MinRunes: 50,
	}
}

type textChunk struct {
	Offset int
	Text   string
}

// chunkText splits text into fixed windows. Offsets are rune offsets into text.
// Splitting stops at the first window that reaches the end of text, so every
// chunk but the last is exactly Size runes. Windows under MinRunes are dropped.
func chunkText(text string, cfg ChunkConfig) []textChunk {
	if text == "" {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}

	step := cfg.Size - cfg.Overlap
	if step <= 0 {
		step = cfg.Size
	}

	runes := []rune(text)
	chunks := make([]textChunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		if end-start < cfg.MinRunes {
			break
		}
		chunks = append(chunks, textChunk{Offset: start, Text: string(runes[start:end])})
		if end == len(runes) {
			break
		}
	}

	return chunks
}
