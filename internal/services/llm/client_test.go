package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ytqa/internal/services"
)

func completionHandler(t *testing.T, content string, capture *chatCompletionRequest) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}, "finish_reason": "stop"},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func TestCompleteSendsPromptsAndReturnsVerbatim(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(completionHandler(t, "  The video tests things.\n", &captured))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "demo-model"})
	got, err := client.Complete(context.Background(), "system text", "user text")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "  The video tests things.\n" {
		t.Fatalf("expected verbatim content, got %q", got)
	}
	if captured.Model != "demo-model" || captured.Temperature != 0 {
		t.Fatalf("unexpected request %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "user text" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
}

func TestCompleteWithoutKeyIsAuthenticationError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), "s", "u")
	if !errors.Is(err, services.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("no request should be sent without a key")
	}
}

func TestCompleteStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		marker error
	}{
		{http.StatusUnauthorized, services.ErrAuthentication},
		{http.StatusForbidden, services.ErrAuthentication},
		{http.StatusBadRequest, services.ErrAnswerGeneration},
		{http.StatusInternalServerError, services.ErrAnswerGeneration},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))
		client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "s", "u")
		server.Close()
		if !errors.Is(err, tt.marker) {
			t.Fatalf("status %d: expected %v, got %v", tt.status, tt.marker, err)
		}
	}
}

func TestCompleteEmptyContentIsAnswerGenerationError(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, "   ", nil))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), "s", "u")
	if !errors.Is(err, services.ErrAnswerGeneration) {
		t.Fatalf("expected ErrAnswerGeneration, got %v", err)
	}
	var emptyErr *emptyContentError
	if !errors.As(err, &emptyErr) || emptyErr.FinishReason != "stop" {
		t.Fatalf("expected emptyContentError detail, got %v", err)
	}
}

func TestCompleteDoesNotRetryByDefault(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", hits.Load())
	}
}

func TestCompleteRetriesOnHTTP429WhenEnabled(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		completionHandler(t, "answer", nil)(w, r)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL},
		WithRetryMaxAttempts(3),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	got, err := client.Complete(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "answer" || hits.Load() != 2 {
		t.Fatalf("unexpected result %q after %d hits", got, hits.Load())
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected Retry-After delay, got %v", slept)
	}
}

func TestHealthCheck(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(completionHandler(t, "OK", &captured))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "m"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if captured.MaxTokens != 4 {
		t.Fatalf("expected short ping, got max_tokens=%d", captured.MaxTokens)
	}
}

func TestBackoffDelay(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := client.backoffDelay(i + 1); got != w {
			t.Fatalf("attempt %d: got %v want %v", i+1, got, w)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative should be rejected")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage should be rejected")
	}
}
