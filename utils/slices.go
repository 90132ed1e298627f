package utils

// Chunk splits a slice into consecutive chunks of at most size elements.
// The returned chunks are subslices of the input, in order, so concatenating
// them reproduces the input exactly.
func Chunk[T any](slice []T, size int) [][]T {
	if size <= 0 || len(slice) == 0 {
		if len(slice) == 0 {
			return nil
		}
		return [][]T{slice}
	}

	chunks := make([][]T, 0, (len(slice)+size-1)/size)
	for start := 0; start < len(slice); start += size {
		end := start + size
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[start:end])
	}
	return chunks
}
