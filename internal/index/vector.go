package index

import "math"

// Vector is a chunk or query representation produced by a Vectorizer.
// Vectors are only ever compared against vectors from the same Vectorizer,
// so implementations may assume a matching concrete type.
type Vector interface {
	// Dot returns the dot product with q. The index normalizes vectors at
	// build and query time, so this is the cosine similarity. Mismatched
	// types or dimensions score 0.
	Dot(q Vector) float64
}

// Dense is a fixed-length embedding vector.
type Dense []float32

// Dot returns the dot product with q.
func (d Dense) Dot(q Vector) float64 {
	other, ok := q.(Dense)
	if !ok || len(other) != len(d) {
		return 0
	}
	var sum float64
	for i, v := range d {
		sum += float64(v) * float64(other[i])
	}
	return sum
}

// normalized returns d scaled to unit L2 length. Zero vectors stay zero,
// so they score 0 against everything instead of producing NaN.
func (d Dense) normalized() Dense {
	var sq float64
	for _, v := range d {
		sq += float64(v) * float64(v)
	}
	if sq == 0 {
		return d
	}
	norm := math.Sqrt(sq)
	out := make(Dense, len(d))
	for i, v := range d {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// Sparse stores only non-zero TF-IDF weights keyed by vocabulary index.
type Sparse map[int]float64

// Dot returns the dot product with q, iterating the smaller support.
func (s Sparse) Dot(q Vector) float64 {
	other, ok := q.(Sparse)
	if !ok {
		return 0
	}
	a, b := s, other
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		sum += w * b[term]
	}
	return sum
}

// normalize scales the weights to unit L2 length in place.
// Zero vectors stay zero.
func (s Sparse) normalize() {
	var sq float64
	for _, w := range s {
		sq += w * w
	}
	if sq == 0 {
		return
	}
	norm := math.Sqrt(sq)
	for term, w := range s {
		s[term] = w / norm
	}
}
