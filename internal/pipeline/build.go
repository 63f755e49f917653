package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ytqa/internal/answer"
	"ytqa/internal/chunking"
	"ytqa/internal/config"
	"ytqa/internal/embedcache"
	"ytqa/internal/logging"
	"ytqa/internal/metrics"
	"ytqa/internal/retrieval"
	"ytqa/internal/services/embedding"
	"ytqa/internal/services/llm"
	"ytqa/internal/services/whisper"
	"ytqa/internal/services/ytdlp"
	"ytqa/internal/session"
)

// Runtime is a Pipeline built from configuration together with the
// long-lived resources it owns.
type Runtime struct {
	*Pipeline

	Metrics   *metrics.Metrics
	Embedding *embedding.Client
	LLM       *llm.Client

	whisper *whisper.Service
	cache   *embedcache.Store
}

// Build wires the production collaborators described by cfg. The caller must
// Close the returned Runtime.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	m := metrics.New()

	fetcher := ytdlp.New(cfg.Download.Binary, cfg.Download.AudioFormat,
		ytdlp.WithTimeout(time.Duration(cfg.Download.TimeoutSeconds)*time.Second))
	transcriber := whisper.NewFromConfig(cfg, logger)

	embedClient := embedding.NewFromConfig(cfg)
	var embedder retrieval.Embedder = embedClient
	var cache *embedcache.Store
	if cfg.Embedding.CacheEnabled {
		store, err := embedcache.Open(ctx, cfg.EmbeddingCachePath())
		if err != nil {
			// The cache only saves work; run without it.
			logging.WarnWithContext(logger, "embedding cache unavailable", "embedcache_open",
				logging.Error(err),
				logging.String(logging.FieldImpact, "every question re-embeds the transcript"),
				logging.String(logging.FieldErrorHint, "delete "+cfg.EmbeddingCachePath()+" to rebuild it"),
			)
		} else {
			cache = store
			embedder = embedcache.NewCached(embedClient, store, embedClient.Model(), logger)
		}
	}

	llmClient := llm.NewFromConfig(cfg)

	p := New(Deps{
		Sessions:    session.NewManager(cfg.SessionsDir()),
		Fetcher:     fetcher,
		Transcriber: transcriber,
		Chunker: chunking.Splitter{
			Strategy:  cfg.Chunking.Strategy,
			ChunkSize: cfg.Chunking.ChunkSize,
			Overlap:   cfg.Chunking.Overlap,
		},
		Retriever: retrieval.New(embedder, logger),
		Answerer:  answer.New(llmClient, logger),
		Metrics:   m,
		Logger:    logger,
	}, Options{
		ModelSize:   cfg.Transcription.ModelSize,
		AudioFormat: cfg.Download.AudioFormat,
		TopK:        cfg.Retrieval.TopK,
	})

	return &Runtime{
		Pipeline:  p,
		Metrics:   m,
		Embedding: embedClient,
		LLM:       llmClient,
		whisper:   transcriber,
		cache:     cache,
	}, nil
}

// Close releases the helper script and the embedding cache.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.whisper.Close(), r.cache.Close())
}
