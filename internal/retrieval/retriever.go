package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"ytqa/internal/logging"
	"ytqa/internal/services"
)

// DefaultTopK is used when Search is called with k <= 0.
const DefaultTopK = 4

const stage = "retrieve"

// Embedder produces one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index holds chunk texts and their vectors in chunk order.
type Index struct {
	chunks  []string
	vectors [][]float32
	dim     int
}

// Len reports the number of indexed chunks.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.chunks)
}

// Chunks returns a copy of the indexed texts.
func (i *Index) Chunks() []string {
	if i == nil {
		return nil
	}
	return append([]string(nil), i.chunks...)
}

// Dimension reports the vector dimension, or 0 for an empty index.
func (i *Index) Dimension() int {
	if i == nil {
		return 0
	}
	return i.dim
}

// Match is a ranked chunk.
type Match struct {
	Position int
	Text     string
	Score    float64
}

// Retriever builds indexes and answers similarity queries.
type Retriever struct {
	embedder Embedder
	logger   *slog.Logger
}

// New constructs a Retriever.
func New(embedder Embedder, logger *slog.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		logger:   logging.NewComponentLogger(logger, "retrieval"),
	}
}

// Index embeds every chunk. An empty chunk list yields an empty index
// without contacting the embedder.
func (r *Retriever) Index(ctx context.Context, chunks []string) (*Index, error) {
	idx := &Index{chunks: append([]string(nil), chunks...)}
	if len(chunks) == 0 {
		return idx, nil
	}
	vectors, err := r.embed(ctx, "index", chunks)
	if err != nil {
		return nil, err
	}
	dim, err := checkVectors(vectors, len(chunks))
	if err != nil {
		return nil, err
	}
	idx.vectors = vectors
	idx.dim = dim
	logging.WithContext(ctx, r.logger).Debug("chunks indexed",
		logging.Int("chunks", len(chunks)),
		logging.Int("dimension", dim),
	)
	return idx, nil
}

// Search returns at most min(k, idx.Len()) chunk texts, most similar first.
func (r *Retriever) Search(ctx context.Context, idx *Index, question string, k int) ([]string, error) {
	matches, err := r.Rank(ctx, idx, question, k)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts, nil
}

// Rank is Search with positions and scores.
func (r *Retriever) Rank(ctx context.Context, idx *Index, question string, k int) ([]Match, error) {
	if idx.Len() == 0 {
		return []Match{}, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}
	vectors, err := r.embed(ctx, "search", []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, services.Wrap(services.ErrEmbedding, stage, "search",
			fmt.Sprintf("expected 1 question vector, got %d", len(vectors)), nil)
	}
	query := vectors[0]
	if len(query) != idx.dim {
		return nil, services.Wrap(services.ErrEmbedding, stage, "search",
			fmt.Sprintf("question vector has dimension %d, index has %d", len(query), idx.dim), nil)
	}

	matches := make([]Match, len(idx.chunks))
	for i, vec := range idx.vectors {
		matches[i] = Match{Position: i, Text: idx.chunks[i], Score: CosineSimilarity(query, vec)}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	if k < len(matches) {
		matches = matches[:k]
	}

	logger := logging.WithContext(ctx, r.logger)
	if logger.Enabled(ctx, slog.LevelDebug) {
		positions := make([]int, len(matches))
		for i, m := range matches {
			positions[i] = m.Position
		}
		logger.Debug("chunks ranked",
			logging.Int("candidates", idx.Len()),
			logging.Int("returned", len(matches)),
			logging.Any("positions", positions),
		)
	}
	return matches, nil
}

func (r *Retriever) embed(ctx context.Context, op string, texts []string) ([][]float32, error) {
	if r.embedder == nil {
		return nil, services.Wrap(services.ErrEmbedding, stage, op, "no embedder configured", nil)
	}
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		if errors.Is(err, services.ErrEmbedding) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrEmbedding, stage, op, "embedding service failed", err)
	}
	return vectors, nil
}

func checkVectors(vectors [][]float32, want int) (int, error) {
	if len(vectors) != want {
		return 0, services.Wrap(services.ErrEmbedding, stage, "index",
			fmt.Sprintf("expected %d vectors, got %d", want, len(vectors)), nil)
	}
	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) == 0 || len(vec) != dim {
			return 0, services.Wrap(services.ErrEmbedding, stage, "index",
				fmt.Sprintf("vector %d has dimension %d, expected %d", i, len(vec), dim), nil)
		}
	}
	return dim, nil
}
