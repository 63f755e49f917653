package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, executableName(name))
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank result %#v", results[2])
	}
}

func TestCheckBinariesProbeAndVersion(t *testing.T) {
	python := writeStub(t, t.TempDir(), "python3")
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		joined := strings.Join(args, " ")
		switch {
		case strings.Contains(joined, "faster_whisper"):
			return []byte("Traceback (most recent call last):\nModuleNotFoundError: No module named 'faster_whisper'\n"), errors.New("exit status 1")
		case joined == "--version":
			return []byte("Python 3.12.3\n"), nil
		}
		return nil, nil
	}

	results := checkWith(context.Background(), []Requirement{
		{Name: "Python", Command: python, VersionArgs: []string{"--version"}},
		{Name: "faster-whisper", Command: python, Probe: []string{"-c", "import faster_whisper"}},
	}, run)

	if !results[0].Available || results[0].Version != "Python 3.12.3" {
		t.Fatalf("unexpected python status %#v", results[0])
	}
	if results[1].Available {
		t.Fatal("failed probe should mark requirement unavailable")
	}
	if results[1].Detail != "ModuleNotFoundError: No module named 'faster_whisper'" {
		t.Fatalf("unexpected probe detail %q", results[1].Detail)
	}
}

func TestCheckFFmpegBesideYtDlp(t *testing.T) {
	tmp := t.TempDir()
	ytdlp := writeStub(t, tmp, "yt-dlp")
	ffmpeg := writeStub(t, tmp, "ffmpeg")

	status := CheckFFmpegForYtDlp(ytdlp)
	if !status.Available || status.Command != ffmpeg {
		t.Fatalf("expected bundled ffmpeg %q, got %#v", ffmpeg, status)
	}
}

func TestCheckFFmpegPathFallback(t *testing.T) {
	tmp := t.TempDir()
	ytdlp := writeStub(t, tmp, "yt-dlp")
	binDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	ffmpeg := writeStub(t, binDir, "ffmpeg")
	t.Setenv("PATH", binDir)

	status := CheckFFmpegForYtDlp(ytdlp)
	if !status.Available || status.Command != ffmpeg {
		t.Fatalf("expected PATH ffmpeg %q, got %#v", ffmpeg, status)
	}
}

func TestCheckFFmpegNotFound(t *testing.T) {
	ytdlp := writeStub(t, t.TempDir(), "yt-dlp")
	t.Setenv("PATH", "")
	status := CheckFFmpegForYtDlp(ytdlp)
	if status.Available || status.Detail == "" {
		t.Fatalf("expected ffmpeg resolution to fail, got %#v", status)
	}
}
