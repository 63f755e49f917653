package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineBytes = 1024 * 1024

// Filter selects log lines. A zero Filter matches everything.
type Filter struct {
	SessionID string
	Contains  string
}

// Match reports whether a record's first line passes the filter. Session
// matching covers the console ("Session x") and JSON ("session_id":"x")
// encodings.
func (f Filter) Match(line string) bool {
	if f.SessionID != "" &&
		!strings.Contains(line, "Session "+f.SessionID+" ") &&
		!strings.Contains(line, `"session_id":"`+f.SessionID+`"`) {
		return false
	}
	if f.Contains != "" && !strings.Contains(line, f.Contains) {
		return false
	}
	return true
}

// recordMatcher applies a Filter per record: indented console field lines
// share the decision made for the header line above them.
type recordMatcher struct {
	filter Filter
	keep   bool
}

func (m *recordMatcher) accept(line string) bool {
	if strings.HasPrefix(line, "    ") {
		return m.keep
	}
	m.keep = m.filter.Match(line)
	return m.keep
}

// Last returns up to limit matching lines from the end of the file together
// with the offset just past the last byte read. A missing file yields no
// lines and offset 0.
func Last(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	} else if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	var ring []string
	matcher := &recordMatcher{filter: filter}
	offset, err := scanLines(file, func(line string) {
		if !matcher.accept(line) || limit <= 0 {
			return
		}
		if len(ring) == limit {
			ring = ring[1:]
		}
		ring = append(ring, line)
	})
	if err != nil {
		return nil, 0, err
	}
	return ring, offset, nil
}

// Follow polls path every interval and passes each new matching line to emit,
// starting at offset. A truncated file is read again from the start. Follow
// returns when ctx ends.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	matcher := &recordMatcher{filter: filter}
	for {
		next, err := readFrom(path, offset, func(line string) {
			if matcher.accept(line) {
				emit(line)
			}
		})
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, fn func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	consumed, err := scanLines(file, fn)
	if err != nil {
		return offset, err
	}
	return offset + consumed, nil
}

// scanLines feeds complete lines to fn and returns the number of bytes they
// occupied. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if len(line) > maxLineBytes {
			line = line[:maxLineBytes]
		}
		fn(strings.TrimRight(line, "\r\n"))
	}
}
