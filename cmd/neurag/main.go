package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/synaptiq/neurag/internal/chunker"
	"github.com/synaptiq/neurag/internal/config"
	"github.com/synaptiq/neurag/internal/corpus"
	"github.com/synaptiq/neurag/internal/domain"
	"github.com/synaptiq/neurag/internal/embcache"
	"github.com/synaptiq/neurag/internal/index"
	"github.com/synaptiq/neurag/internal/kv"
	kvmemory "github.com/synaptiq/neurag/internal/kv/memory"
	kvredis "github.com/synaptiq/neurag/internal/kv/redis"
	logpkg "github.com/synaptiq/neurag/internal/logger"
	"github.com/synaptiq/neurag/internal/metrics"
	chiTransport "github.com/synaptiq/neurag/internal/transport/chi"
	openaiTransport "github.com/synaptiq/neurag/internal/transport/openai"
	askuc "github.com/synaptiq/neurag/internal/usecase/ask"
	healthuc "github.com/synaptiq/neurag/internal/usecase/health"
	"github.com/synaptiq/neurag/internal/version"
)

func main() {
	// Load .env if present (API keys in local development)
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting neurag server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("strategy", cfg.Retrieval.Strategy),
		zap.String("chunking", cfg.Retrieval.Chunking),
	)

	ctx := context.Background()

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCompletionMetrics()
	metrics.RegisterIndexMetrics()

	// Load and chunk the corpus
	text, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}

	chunks, err := chunker.Split(text, chunker.Mode(cfg.Retrieval.Chunking),
		cfg.Retrieval.ChunkSize, cfg.Retrieval.Overlap)
	if err != nil {
		logger.Fatal("Failed to chunk corpus", zap.Error(err))
	}
	logger.Info("Corpus chunked", zap.Int("chunks", len(chunks)))

	// Build the vectorizer — composition root
	strategy := domain.Strategy(cfg.Retrieval.Strategy)

	var (
		vectorizer     index.Vectorizer
		embHealth      healthuc.ProviderChecker
		cachePinger    healthuc.CachePinger
		embeddingsInfo string
	)

	switch strategy {
	case domain.StrategySparse:
		vectorizer = index.NewSparseVectorizer()
		embeddingsInfo = "TF-IDF (in-memory)"

	case domain.StrategyDense:
		store, err := buildCacheStore(ctx, cfg.Cache, logger)
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		if store != nil {
			defer store.Close()
			cachePinger = store
		}

		base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   "nomic",
			Logger:     logger,
		})
		embHealth = base

		docEmbedder := buildEmbedder(base, store, cfg.Embedding.DocumentInstruction,
			time.Duration(cfg.Cache.TTLSec)*time.Second, logger)
		queryEmbedder := buildEmbedder(base, store, cfg.Embedding.QueryInstruction,
			time.Duration(cfg.Cache.TTLSec)*time.Second, logger)

		vectorizer = index.NewDenseVectorizer(docEmbedder, queryEmbedder)
		embeddingsInfo = fmt.Sprintf("Nomic AI (%s)", cfg.Embedding.Model)

	default:
		logger.Fatal("Unknown retrieval strategy", zap.String("strategy", cfg.Retrieval.Strategy))
	}

	// Build the index once, before serving traffic
	idx := index.New(strategy, vectorizer)
	if err := idx.Build(ctx, chunks); err != nil {
		logger.Fatal("Failed to build index", zap.Error(err))
	}
	logger.Info("Index built",
		zap.String("strategy", string(strategy)),
		zap.Int("chunks", idx.Chunks()),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Completion.APIKey,
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		Temperature: cfg.Completion.Temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
		TopP:        cfg.Completion.TopP,
		Provider:    "groq",
		Logger:      logger,
	})

	askSvc := askuc.New(idx, generator, cfg.Retrieval.TopK)
	healthSvc := healthuc.New(idx, embHealth, generator, cachePinger)

	server := chiTransport.NewServer(askSvc, healthSvc, chiTransport.Info{
		App:        "Neuroscience RAG Chatbot",
		Embeddings: embeddingsInfo,
		LLM:        fmt.Sprintf("Groq (%s)", cfg.Completion.Model),
		Chunks:     idx.Chunks(),
		Strategy:   string(strategy),
		Version:    version.Version,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCacheStore creates the embedding cache backend, or nil for "none".
func buildCacheStore(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (kv.Store, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "memory":
		return kvmemory.NewStore(), nil
	case "redis", "valkey":
		store, err := kvredis.NewStore(kvredis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Addrs))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
// The instruction wraps outermost so the cache key includes the prefix.
func buildEmbedder(
	base *openaiTransport.Embedder,
	store kv.Store,
	instruction string,
	ttl time.Duration,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = base
	if store != nil {
		cached := embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
		if ttl > 0 {
			cached = cached.WithTTL(ttl)
		}
		embedder = cached
	}

	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
