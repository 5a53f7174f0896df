package domain

// Strategy selects the vector representation used by the retrieval index.
type Strategy string

// Retrieval strategy constants.
const (
	// StrategySparse ranks chunks by TF-IDF weighted term overlap.
	StrategySparse Strategy = "sparse"
	// StrategyDense ranks chunks by externally computed embedding vectors.
	StrategyDense Strategy = "dense"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == StrategySparse || s == StrategyDense
}
