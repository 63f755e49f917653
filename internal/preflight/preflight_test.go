package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytqa/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail, got %#v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

func TestCheckLLM(t *testing.T) {
	cfg := newConfig(t)
	cfg.LLM.APIKey = ""
	if result := CheckLLM(context.Background(), cfg); result.Passed || !strings.Contains(result.Detail, "API key missing") {
		t.Fatalf("expected missing key failure, got %#v", result)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"OK"}}]}`))
	}))
	defer srv.Close()
	cfg.LLM.BaseURL = srv.URL

	cfg.LLM.APIKey = "good"
	if result := CheckLLM(context.Background(), cfg); !result.Passed {
		t.Fatalf("expected pass, got %#v", result)
	}
	cfg.LLM.APIKey = "bad"
	if result := CheckLLM(context.Background(), cfg); result.Passed || !strings.HasPrefix(result.Detail, "AuthenticationError") {
		t.Fatalf("expected authentication failure, got %#v", result)
	}
}

func TestCheckEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2]}]}`))
	}))
	cfg := newConfig(t)
	cfg.Embedding.BaseURL = srv.URL
	if result := CheckEmbedding(context.Background(), cfg); !result.Passed {
		t.Fatalf("expected pass, got %#v", result)
	}

	srv.Close()
	if result := CheckEmbedding(context.Background(), cfg); result.Passed || !strings.HasPrefix(result.Detail, "EmbeddingError") {
		t.Fatalf("expected failure after server closed, got %#v", result)
	}
}

func TestRunLocalReportsMissingTools(t *testing.T) {
	cfg := newConfig(t)
	cfg.Download.Binary = "ytqa-test-missing-yt-dlp"
	cfg.Transcription.Backend = config.BackendWhisperX
	cfg.Transcription.UVX = "ytqa-test-missing-uvx"

	results := RunLocal(context.Background(), cfg)
	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if !byName["Data directory"].Passed || !byName["Sessions directory"].Passed {
		t.Fatalf("directory checks should pass: %#v", results)
	}
	for _, name := range []string{"yt-dlp", "uvx"} {
		if r, ok := byName[name]; !ok || r.Passed {
			t.Fatalf("expected %s to fail, got %#v", name, r)
		}
	}
	if _, ok := byName["Python"]; ok {
		t.Fatal("python is not required for the whisperx backend")
	}
	if len(Failed(results)) < 2 {
		t.Fatalf("expected at least two failures, got %#v", Failed(results))
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}
