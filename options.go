package neurag

import "github.com/synaptiq/neurag/internal/chunker"

// Strategy selects how chunks and queries are vectorized.
type Strategy string

const (
	// StrategySparse ranks with TF-IDF vectors built from the corpus itself.
	// No network calls, no API keys.
	StrategySparse Strategy = "sparse"
	// StrategyDense ranks with embeddings from an external model.
	// Requires WithEmbedder.
	StrategyDense Strategy = "dense"
)

// Option configures Build.
type Option interface {
	apply(*buildConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*buildConfig)

func (f optionFunc) apply(c *buildConfig) { f(c) }

type buildConfig struct {
	strategy  Strategy
	mode      chunker.Mode
	chunkSize int
	overlap   int
	embedder  Embedder
}

func defaultBuildConfig() buildConfig {
	return buildConfig{
		strategy:  StrategySparse,
		mode:      chunker.ModeWindow,
		chunkSize: 800,
		overlap:   0,
	}
}

// WithStrategy selects the retrieval strategy. Defaults to StrategySparse.
func WithStrategy(s Strategy) Option {
	return optionFunc(func(c *buildConfig) {
		c.strategy = s
	})
}

// WithChunkSize sets the window length in runes. Only applies to window
// chunking. Defaults to 800.
func WithChunkSize(size int) Option {
	return optionFunc(func(c *buildConfig) {
		c.chunkSize = size
	})
}

// WithOverlap sets how many runes adjacent windows share. Only applies to
// window chunking. Defaults to 0.
func WithOverlap(overlap int) Option {
	return optionFunc(func(c *buildConfig) {
		c.overlap = overlap
	})
}

// WithParagraphChunks splits on blank lines instead of fixed windows.
func WithParagraphChunks() Option {
	return optionFunc(func(c *buildConfig) {
		c.mode = chunker.ModeParagraph
	})
}

// WithEmbedder sets the embedding provider. Required for StrategyDense.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *buildConfig) {
		c.embedder = e
	})
}
