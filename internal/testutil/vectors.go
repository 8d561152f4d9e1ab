package testutil

// OneHotVector returns a dims-length embedding with a single 1.0 at index hot.
// Cosine distance between two one-hot vectors is 0 when equal and 1 otherwise.
func OneHotVector(dims, hot int) []float32 {
	v := make([]float32, dims)
	if hot >= 0 && hot < dims {
		v[hot] = 1
	}
	return v
}

// BlendVector mixes two one-hot directions so ranking against either is deterministic.
func BlendVector(dims, primary, secondary int, weight float32) []float32 {
	v := make([]float32, dims)
	if primary >= 0 && primary < dims {
		v[primary] = 1
	}
	if secondary >= 0 && secondary < dims {
		v[secondary] = weight
	}
	return v
}
