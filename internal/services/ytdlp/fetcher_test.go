package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytqa/internal/services"
	"ytqa/internal/services/ytdlp"
)

func TestFetchBuildsArgsAndReturnsDest(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "audio.mp3")
	var gotName string
	var gotArgs []string
	runner := func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, os.WriteFile(dest, []byte("ID3"), 0o644)
	}

	f := ytdlp.New("", "", ytdlp.WithCommandRunner(runner))
	path, err := f.Fetch(context.Background(), " https://www.youtube.com/watch?v=abc ", dest)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != dest {
		t.Fatalf("unexpected path %q", path)
	}
	if gotName != "yt-dlp" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	want := "-x --audio-format mp3 --no-playlist --force-overwrites -o " + dest + " https://www.youtube.com/watch?v=abc"
	if strings.Join(gotArgs, " ") != want {
		t.Fatalf("unexpected args:\n got %q\nwant %q", strings.Join(gotArgs, " "), want)
	}
}

func TestFetchRejectsInvalidURLWithoutRunning(t *testing.T) {
	called := false
	runner := func(context.Context, string, ...string) ([]byte, error) {
		called = true
		return nil, nil
	}
	f := ytdlp.New("yt-dlp", "mp3", ytdlp.WithCommandRunner(runner))
	for _, raw := range []string{"", "not a url", "ftp://host/file", "youtube.com/watch?v=1", "https://"} {
		_, err := f.Fetch(context.Background(), raw, filepath.Join(t.TempDir(), "a.mp3"))
		if !errors.Is(err, services.ErrDownload) {
			t.Fatalf("%q: expected DownloadError, got %v", raw, err)
		}
	}
	if called {
		t.Fatal("runner must not be invoked for invalid urls")
	}
}

func TestFetchNonZeroExitIsDownloadError(t *testing.T) {
	runner := func(context.Context, string, ...string) ([]byte, error) {
		return []byte("ERROR: Video unavailable\n"), errors.New("exit status 1")
	}
	f := ytdlp.New("yt-dlp", "mp3", ytdlp.WithCommandRunner(runner))
	_, err := f.Fetch(context.Background(), "https://youtu.be/x", filepath.Join(t.TempDir(), "a.mp3"))
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
	if services.Kind(err) != "DownloadError" {
		t.Fatalf("unexpected kind %q", services.Kind(err))
	}
}

func TestFetchMissingOutputIsDownloadError(t *testing.T) {
	runner := func(context.Context, string, ...string) ([]byte, error) { return nil, nil }
	f := ytdlp.New("yt-dlp", "mp3", ytdlp.WithCommandRunner(runner))
	_, err := f.Fetch(context.Background(), "https://youtu.be/x", filepath.Join(t.TempDir(), "a.mp3"))
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
}

func TestFetchWithStubBinary(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\nwhile [ $# -gt 0 ]; do if [ \"$1\" = \"-o\" ]; then shift; printf audio > \"$1\"; fi; shift; done\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "out.mp3")
	f := ytdlp.New(stub, "mp3")
	if _, err := f.Fetch(context.Background(), "https://youtu.be/x", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "audio" {
		t.Fatalf("unexpected output %q %v", data, err)
	}
}

func TestLooksLikeURL(t *testing.T) {
	cases := map[string]bool{
		"https://youtu.be/abc":     true,
		"  http://example.com/v  ": true,
		"what is https://x.com":    false,
		"hello":                    false,
		"https://":                 false,
	}
	for input, want := range cases {
		if got := ytdlp.LooksLikeURL(input); got != want {
			t.Errorf("LooksLikeURL(%q) = %v, want %v", input, got, want)
		}
	}
}
