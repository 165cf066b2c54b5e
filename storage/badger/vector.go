package badger

import "math"

// normalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func normalizeVector(v []float32) []float32 {
	result := make([]float32, len(v))

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	if magnitude == 0 {
		return result
	}

	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// dotProduct calculates the dot product of two vectors.
// For unit vectors this is their cosine similarity.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
