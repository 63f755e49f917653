package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ytqa/internal/logging"
)

func TestPruneLogDirRemovesExpiredLogs(t *testing.T) {
	dir := t.TempDir()
	rotated := filepath.Join(dir, "ytqa.log.1")
	stale := filepath.Join(dir, "ytqa-2026-01-01.log")
	fresh := filepath.Join(dir, "ytqa.log.2")
	other := filepath.Join(dir, "notes.txt")
	active := logging.LogFilePath(dir)
	for _, path := range []string{rotated, stale, fresh, other, active} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	for _, path := range []string{rotated, stale, other, active} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "old.log"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := logging.PruneLogDir(logging.NewNop(), dir, 30); got != 2 {
		t.Fatalf("expected 2 files pruned, got %d", got)
	}
	for _, path := range []string{rotated, stale} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed, stat err=%v", path, err)
		}
	}
	for _, path := range []string{fresh, other, active, filepath.Join(dir, "old.log")} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}

func TestPruneLogDirDisabledOrMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(-1, 0, 0)
	_ = os.Chtimes(path, past, past)

	if got := logging.PruneLogDir(nil, dir, 0); got != 0 {
		t.Fatalf("retention 0 pruned %d files", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("retention 0 must keep files: %v", err)
	}
	if got := logging.PruneLogDir(nil, filepath.Join(dir, "absent"), 7); got != 0 {
		t.Fatalf("missing dir pruned %d files", got)
	}
}
