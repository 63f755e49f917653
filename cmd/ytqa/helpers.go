package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytqa/internal/language"
	"ytqa/internal/pipeline"
	"ytqa/internal/transcript"
)

// actionError renders pipeline failures as "<Kind>: <message>" while keeping
// the chain intact for errors.Is.
type actionError struct {
	err error
}

func (e *actionError) Error() string { return pipeline.Describe(e.err) }

func (e *actionError) Unwrap() error { return e.err }

func wrapActionError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return &actionError{err: err}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func printTranscript(out io.Writer, t transcript.Transcript) {
	for _, seg := range t.Segments {
		fmt.Fprintln(out, seg.Line())
	}
}

func transcriptSummary(t transcript.Transcript) string {
	return fmt.Sprintf("Language: %s, %d segments",
		language.Describe(t.Language, t.LanguageProbability), len(t.Segments))
}

func formatAge(ts time.Time, now time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
