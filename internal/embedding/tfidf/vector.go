package tfidf

import (
	"fmt"
	"math"
)

// Vector is a sparse term vector. Indices are strictly ascending and
// Values[i] is the weight of Indices[i].
type Vector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// Len returns the number of non-zero components.
func (v Vector) Len() int { return len(v.Indices) }

// IsZero reports whether the vector has no non-zero component.
func (v Vector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot computes the dot product of two sparse vectors with a merge join.
// For L2-normalized vectors this is the cosine similarity.
func Dot(a, b Vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Validate checks that v is well formed for a vocabulary of size dim.
func (v Vector) Validate(dim int) error {
	if len(v.Indices) != len(v.Values) {
		return fmt.Errorf("vector has %d indices but %d values", len(v.Indices), len(v.Values))
	}
	prev := -1
	for i, idx := range v.Indices {
		if idx <= prev || idx >= dim {
			return fmt.Errorf("vector index %d out of order or outside [0,%d)", idx, dim)
		}
		prev = idx
		x := v.Values[i]
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return fmt.Errorf("vector weight %v at index %d is invalid", x, idx)
		}
	}
	return nil
}
