package whisper_test

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ytqa/internal/logging"
	"ytqa/internal/services"
	"ytqa/internal/services/whisper"
	"ytqa/internal/transcript"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte("ID3fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "python-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFasterWhisper(t *testing.T, python string) *whisper.Service {
	t.Helper()
	svc := whisper.NewService(whisper.Config{Backend: whisper.BackendFasterWhisper, Python: python, WordTimestamps: true}, logging.NewNop())
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestFasterWhisperParsesStream(t *testing.T) {
	python := writeStub(t, `echo "loading model..."
echo '{"type":"info","language":"en","language_probability":0.97,"duration":12.5}'
echo '{"type":"segment","start":4.0,"end":6.2,"text":" this is a test"}'
echo '{"type":"segment","start":0.0,"end":2.5,"text":" Hello world"}'
echo '{"type":"segment","start":7.0,"end":9.0,"text":"final segment "}'
`)
	svc := newFasterWhisper(t, python)

	var seen []transcript.RawSegment
	result, err := svc.TranscribeWithProgress(context.Background(), writeAudio(t), "base", func(seg transcript.RawSegment, duration float64) {
		if duration != 12.5 {
			t.Errorf("unexpected duration %v", duration)
		}
		seen = append(seen, seg)
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 progress callbacks, got %d", len(seen))
	}
	if result.Language != "en" || result.LanguageProbability != 0.97 || result.Duration != 12.5 {
		t.Fatalf("unexpected info %+v", result)
	}
	if result.FullText != "Hello world this is a test final segment" {
		t.Fatalf("unexpected full text %q", result.FullText)
	}
	if result.Segments[0].StartTime != "00:00" || result.Segments[0].EndTime != "00:02" {
		t.Fatalf("unexpected first segment %+v", result.Segments[0])
	}
}

func TestFasterWhisperPassesDecodingOptions(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	python := writeStub(t, `echo "$@" > `+argsFile+`
echo '{"type":"info","language":"en","language_probability":1,"duration":1}'
`)
	svc := newFasterWhisper(t, python)
	audio := writeAudio(t)
	if _, err := svc.Transcribe(context.Background(), audio, "small"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{"transcribe.py", "--audio " + audio, "--model small", "--device cpu", "--compute-type int8", "--beam-size 5", "--word-timestamps"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in helper args %q", want, got)
		}
	}
}

func TestFasterWhisperExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		marker error
		kind   string
	}{
		{"model load", "echo 'failed to load model' >&2\nexit 2\n", services.ErrModelLoad, "ModelLoadError"},
		{"decode failure", "echo 'transcription failed: bad audio' >&2\nexit 3\n", services.ErrTranscription, "TranscriptionError"},
		{"other failure", "exit 9\n", services.ErrTranscription, "TranscriptionError"},
		{"no info", "exit 0\n", services.ErrTranscription, "TranscriptionError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFasterWhisper(t, writeStub(t, tt.body))
			_, err := svc.Transcribe(context.Background(), writeAudio(t), "base")
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
			if services.Kind(err) != tt.kind {
				t.Fatalf("unexpected kind %q", services.Kind(err))
			}
		})
	}
}

func TestFasterWhisperOversizedLineStopsHelper(t *testing.T) {
	python := writeStub(t, `echo '{"type":"info","language":"en","language_probability":1,"duration":1}'
exec dd if=/dev/zero bs=1048576 count=3 2>/dev/null
`)
	svc := newFasterWhisper(t, python)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	_, err := svc.Transcribe(ctx, writeAudio(t), "base")
	if ctx.Err() != nil {
		t.Fatalf("helper was left running until the deadline: %v", err)
	}
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected the scanner error to be kept, got %v", err)
	}
}

func TestTranscribeRejectsMissingOrEmptyAudio(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	svc := newFasterWhisper(t, writeStub(t, "touch "+marker+"\n"))

	empty := filepath.Join(t.TempDir(), "empty.mp3")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{filepath.Join(t.TempDir(), "missing.mp3"), empty, ""} {
		_, err := svc.Transcribe(context.Background(), path, "base")
		if !errors.Is(err, services.ErrTranscription) {
			t.Fatalf("%q: expected TranscriptionError, got %v", path, err)
		}
	}
	if _, err := os.Stat(marker); err == nil {
		t.Fatal("helper must not run for unusable audio")
	}
}

func TestTranscribeRejectsUnknownModel(t *testing.T) {
	svc := newFasterWhisper(t, writeStub(t, "exit 0\n"))
	_, err := svc.Transcribe(context.Background(), writeAudio(t), "gigantic")
	if !errors.Is(err, services.ErrModelLoad) {
		t.Fatalf("expected ModelLoadError, got %v", err)
	}
}

func TestTranscribeHonoursCancellation(t *testing.T) {
	svc := newFasterWhisper(t, writeStub(t, "sleep 5\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Transcribe(ctx, writeAudio(t), "base")
	if !errors.Is(err, services.ErrTranscription) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected interrupted transcription, got %v", err)
	}
}

func whisperXRunner(t *testing.T, payload string, fail string) (whisper.CommandRunner, *[]string) {
	t.Helper()
	var captured []string
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		captured = append([]string{name}, args...)
		if fail != "" {
			return []byte(fail), errors.New("exit status 1")
		}
		var outDir string
		for i, arg := range args {
			if arg == "--output_dir" && i+1 < len(args) {
				outDir = args[i+1]
			}
		}
		if err := os.WriteFile(filepath.Join(outDir, "audio.json"), []byte(payload), 0o644); err != nil {
			return nil, err
		}
		return []byte("ok"), nil
	}, &captured
}

func TestWhisperXParsesResult(t *testing.T) {
	runner, captured := whisperXRunner(t, `{"language":"fr","segments":[{"start":1.5,"end":3,"text":" Bonjour "},{"start":0,"end":1.5,"text":"Salut"}]}`, "")
	svc := whisper.NewService(whisper.Config{Backend: whisper.BackendWhisperX}, logging.NewNop())
	svc.WithCommandRunner(runner)

	result, err := svc.Transcribe(context.Background(), writeAudio(t), "medium")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Language != "fr" || result.FullText != "Salut Bonjour" {
		t.Fatalf("unexpected result %+v", result)
	}
	args := strings.Join(*captured, " ")
	for _, want := range []string{"uvx", "whisperx", "--model medium", "--device cpu", "--compute_type int8", "--beam_size 5", "--output_format json"} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected %q in %q", want, args)
		}
	}
}

func TestWhisperXFailureClassification(t *testing.T) {
	tests := []struct {
		output string
		marker error
	}{
		{"Traceback...\nValueError: Invalid model size 'base', expected one of ...", services.ErrModelLoad},
		{"huggingface_hub.utils._errors.LocalEntryNotFoundError: cannot find", services.ErrModelLoad},
		{"RuntimeError: audio decode failed", services.ErrTranscription},
	}
	for _, tt := range tests {
		runner, _ := whisperXRunner(t, "", tt.output)
		svc := whisper.NewService(whisper.Config{Backend: whisper.BackendWhisperX}, logging.NewNop())
		svc.WithCommandRunner(runner)
		_, err := svc.Transcribe(context.Background(), writeAudio(t), "base")
		if !errors.Is(err, tt.marker) {
			t.Fatalf("%q: expected %v, got %v", tt.output, tt.marker, err)
		}
	}
}
