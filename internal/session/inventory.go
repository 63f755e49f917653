package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ytqa/internal/logging"
	"ytqa/internal/services"
)

// Info describes a session directory on disk.
type Info struct {
	ID            string
	Path          string
	ModTime       time.Time
	Size          int64
	HasTranscript bool
}

// List returns every session directory ordered by most recent activity.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []Info
	for _, entry := range entries {
		if !entry.IsDir() || ValidateID(entry.Name()) != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		s := Session{ID: entry.Name(), Dir: filepath.Join(m.root, entry.Name())}
		// The lock file touches the directory, so activity is measured by
		// the transcript when there is one.
		modTime := info.ModTime()
		if ti, err := os.Stat(s.TranscriptPath()); err == nil {
			modTime = ti.ModTime()
		}
		size, _ := dirSize(s.Dir)
		sessions = append(sessions, Info{
			ID:            s.ID,
			Path:          s.Dir,
			ModTime:       modTime,
			Size:          size,
			HasTranscript: s.HasTranscript(),
		})
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	return sessions, nil
}

// PruneResult reports what Prune removed.
type PruneResult struct {
	Removed []string
	Skipped []string
	Errors  []PruneError
}

// PruneError pairs a session with its removal error.
type PruneError struct {
	ID    string
	Error error
}

// Prune removes sessions idle for longer than maxAge. Busy sessions are
// skipped.
func (m *Manager) Prune(ctx context.Context, maxAge time.Duration, logger *slog.Logger) PruneResult {
	var result PruneResult
	sessions, err := m.List()
	if err != nil {
		result.Errors = append(result.Errors, PruneError{ID: m.root, Error: err})
		return result
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "session"))

	cutoff := time.Now().Add(-maxAge)
	for _, info := range sessions {
		if ctx.Err() != nil {
			break
		}
		if !info.ModTime.Before(cutoff) {
			continue
		}
		if err := m.Remove(info.ID); err != nil {
			if errors.Is(err, services.ErrValidation) {
				result.Skipped = append(result.Skipped, info.ID)
				continue
			}
			result.Errors = append(result.Errors, PruneError{ID: info.ID, Error: err})
			logging.WarnWithContext(logger, "failed to remove idle session", "session_prune_failed",
				logging.String(logging.FieldSessionID, info.ID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check data_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, info.ID)
		logger.Info("removed idle session",
			logging.String(logging.FieldSessionID, info.ID),
			logging.Duration("age", time.Since(info.ModTime)),
			logging.String(logging.FieldEventType, "session_pruned"),
		)
	}
	return result
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
