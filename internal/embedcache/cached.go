package embedcache

import (
	"context"
	"log/slog"

	"ytqa/internal/logging"
)

// Embedder produces one vector per input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Cached wraps an Embedder, serving previously seen texts from the store.
type Cached struct {
	next   Embedder
	store  *Store
	model  string
	logger *slog.Logger
}

// NewCached returns an Embedder that consults store before calling next.
func NewCached(next Embedder, store *Store, model string, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cached{
		next:   next,
		store:  store,
		model:  model,
		logger: logging.NewComponentLogger(logger, "embedcache"),
	}
}

// Embed returns vectors in input order. Cache read and write failures are
// logged and fall through to the wrapped embedder.
func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	hits, err := c.store.Get(ctx, c.model, texts)
	if err != nil {
		logging.WarnWithContext(c.logger, "embedding cache lookup failed", "embedcache_read",
			logging.Error(err),
			logging.String(logging.FieldImpact, "all texts sent to embedding service"),
		)
		hits = nil
	}

	out := make([][]float32, len(texts))
	var (
		missTexts []string
		missIdx   []int
	)
	for i, text := range texts {
		if vec, ok := hits[i]; ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	c.logger.Debug("embedding cache lookup",
		logging.Int("hits", len(texts)-len(missTexts)),
		logging.Int("misses", len(missTexts)),
	)
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		out[idx] = fresh[j]
	}
	if err := c.store.Put(ctx, c.model, missTexts, fresh); err != nil {
		logging.WarnWithContext(c.logger, "embedding cache write failed", "embedcache_write",
			logging.Error(err),
			logging.String(logging.FieldImpact, "vectors will be recomputed next time"),
		)
	}
	return out, nil
}
