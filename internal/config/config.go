package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/synaptiq/neurag/internal/chunker"
	"github.com/synaptiq/neurag/internal/domain"
)

// Config holds the neurag service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CorpusConfig holds corpus source settings.
type CorpusConfig struct {
	Path string `yaml:"path"` // empty = embedded default corpus
}

// RetrievalConfig holds chunking and index settings.
type RetrievalConfig struct {
	Strategy  string `yaml:"strategy"`   // sparse, dense (default: dense)
	Chunking  string `yaml:"chunking"`   // paragraph, window (default: paragraph)
	ChunkSize int    `yaml:"chunk_size"` // runes per chunk, window mode only
	Overlap   int    `yaml:"overlap"`    // shared runes between adjacent chunks
	TopK      int    `yaml:"top_k"`      // chunks handed to the model as context
}

// EmbeddingConfig holds embedding provider settings (dense strategy only).
type EmbeddingConfig struct {
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// CompletionConfig holds answer generation provider settings.
type CompletionConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TopP        float64 `yaml:"top_p"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Backend          string   `yaml:"backend"` // memory, redis, valkey, none (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values. The retrieval and
// provider defaults replicate the original deployment: paragraph chunks,
// dense Nomic embeddings, Groq generation, top 3 chunks of context.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Streaming completions hold the response open far longer than a
		// JSON API would.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Retrieval.Strategy == "" {
		c.Retrieval.Strategy = string(domain.StrategyDense)
	}
	if c.Retrieval.Chunking == "" {
		c.Retrieval.Chunking = string(chunker.ModeParagraph)
	}
	if c.Retrieval.ChunkSize <= 0 {
		c.Retrieval.ChunkSize = 800
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 3
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "https://api-atlas.nomic.ai/v1"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "nomic-embed-text-v1.5"
	}
	if c.Embedding.DocumentInstruction == "" {
		c.Embedding.DocumentInstruction = "search_document: "
	}
	if c.Embedding.QueryInstruction == "" {
		c.Embedding.QueryInstruction = "search_query: "
	}
	if c.Completion.BaseURL == "" {
		c.Completion.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "moonshotai/kimi-k2-instruct-0905"
	}
	if c.Completion.Temperature <= 0 {
		c.Completion.Temperature = 0.6
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = 4096
	}
	if c.Completion.TopP <= 0 {
		c.Completion.TopP = 1
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	strategy := domain.Strategy(c.Retrieval.Strategy)
	if !strategy.IsValid() {
		return fmt.Errorf("retrieval.strategy must be \"sparse\" or \"dense\", got %q", c.Retrieval.Strategy)
	}
	mode := chunker.Mode(c.Retrieval.Chunking)
	if !mode.IsValid() {
		return fmt.Errorf("retrieval.chunking must be \"paragraph\" or \"window\", got %q", c.Retrieval.Chunking)
	}
	if mode == chunker.ModeWindow && c.Retrieval.Overlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("retrieval.overlap (%d) must be smaller than retrieval.chunk_size (%d)",
			c.Retrieval.Overlap, c.Retrieval.ChunkSize)
	}
	if c.Retrieval.Overlap < 0 {
		return fmt.Errorf("retrieval.overlap must not be negative, got %d", c.Retrieval.Overlap)
	}
	if strategy == domain.StrategyDense && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required for the dense strategy")
	}
	if c.Completion.APIKey == "" {
		return fmt.Errorf("completion.api_key is required")
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for backend %q", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("cache.backend must be \"memory\", \"redis\", \"valkey\" or \"none\", got %q",
			c.Cache.Backend)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
