// Package embedding calls an OpenAI-compatible /v1/embeddings endpoint, such
// as a local text-embeddings-inference server hosting all-MiniLM-L6-v2.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ytqa/internal/config"
	"ytqa/internal/services"
)

const (
	// DefaultBaseURL targets a local text-embeddings-inference server.
	DefaultBaseURL = "http://127.0.0.1:8080/v1/embeddings"
	// DefaultModel is the sentence-transformers model the index is built with.
	DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

	defaultBatchSize   = 32
	defaultConcurrency = 2
	defaultHTTPTimeout = 60 * time.Second

	stage = "retrieve"
)

// Config captures the embedding endpoint settings.
type Config struct {
	BaseURL        string
	Model          string
	APIKey         string
	BatchSize      int
	Concurrency    int
	TimeoutSeconds int
}

// Client embeds texts in batches.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an embedding client.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the [embedding] section.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		return NewClient(Config{}, opts...)
	}
	return NewClient(Config{
		BaseURL:        cfg.Embedding.BaseURL,
		Model:          cfg.Embedding.Model,
		APIKey:         cfg.Embedding.APIKey,
		BatchSize:      cfg.Embedding.BatchSize,
		Concurrency:    cfg.Embedding.Concurrency,
		TimeoutSeconds: cfg.Embedding.TimeoutSeconds,
	}, opts...)
}

// Model returns the embedding model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Endpoint returns the configured URL.
func (c *Client) Endpoint() string {
	return c.cfg.BaseURL
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embed returns one vector per text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, len(texts))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.Concurrency)
	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(texts))
		group.Go(func() error {
			batch, err := c.embedBatch(gctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) == 0 || len(vec) != dim {
			return nil, services.Wrap(services.ErrEmbedding, stage, "embed",
				fmt.Sprintf("vector %d has dimension %d, expected %d", i, len(vec), dim), nil)
		}
	}
	return vectors, nil
}

func (c *Client) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	encoded, err := json.Marshal(embeddingRequest{Model: c.cfg.Model, Input: batch})
	if err != nil {
		return nil, services.Wrap(services.ErrEmbedding, stage, "embed", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrEmbedding, stage, "embed", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrEmbedding, stage, "embed",
			fmt.Sprintf("embedding service unreachable at %s", c.cfg.BaseURL), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrEmbedding, stage, "embed", "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrEmbedding, stage, "embed",
			fmt.Sprintf("http %d: %s", resp.StatusCode, snippet(body)), nil)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrEmbedding, stage, "embed", "decode response", err)
	}
	if parsed.Error != nil {
		return nil, services.Wrap(services.ErrEmbedding, stage, "embed", parsed.Error.Message, nil)
	}
	if len(parsed.Data) != len(batch) {
		return nil, services.Wrap(services.ErrEmbedding, stage, "embed",
			fmt.Sprintf("expected %d vectors, got %d", len(batch), len(parsed.Data)), nil)
	}

	out := make([][]float32, len(batch))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(batch) || out[item.Index] != nil {
			return nil, services.Wrap(services.ErrEmbedding, stage, "embed",
				fmt.Sprintf("invalid or duplicate index %d in response", item.Index), nil)
		}
		out[item.Index] = item.Embedding
	}
	return out, nil
}

// HealthCheck embeds a probe string.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.embedBatch(ctx, []string{"ping"})
	return err
}

func snippet(body []byte) string {
	clean := strings.Join(strings.Fields(string(body)), " ")
	if len(clean) > 160 {
		clean = clean[:160] + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
