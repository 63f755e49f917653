package logging

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PruneLogDir deletes rotated or leftover log files in dir that were last
// written more than retentionDays ago and returns how many it removed. The
// active LogFileName is always kept; retentionDays <= 0 disables pruning.
func PruneLogDir(logger *slog.Logger, dir string, retentionDays int) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			WarnWithContext(logger, "log directory unreadable; pruning skipped", "log_prune_skipped",
				String("dir", dir),
				Error(err),
				String(FieldErrorHint, "check that paths.log_dir is readable"),
			)
		}
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isPrunableLog(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "could not prune old log", "log_prune_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check ownership of paths.log_dir"),
				String(FieldImpact, "stale log stays on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Info("old logs pruned",
			String("dir", dir),
			Int("removed", removed),
			Int("retention_days", retentionDays),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}

// isPrunableLog matches "*.log" and rotated "*.log.N" names other than the
// file currently being written.
func isPrunableLog(name string) bool {
	if name == LogFileName {
		return false
	}
	return strings.HasSuffix(name, ".log") || strings.Contains(name, ".log.")
}
