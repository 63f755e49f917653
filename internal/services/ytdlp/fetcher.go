// Package ytdlp downloads the audio track of a video page with the yt-dlp CLI.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"ytqa/internal/services"
)

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "yt-dlp"

const stage = "download"

// CommandRunner executes name with args and returns the combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Fetcher runs yt-dlp to extract audio.
type Fetcher struct {
	binary      string
	audioFormat string
	timeout     time.Duration
	run         CommandRunner
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithCommandRunner replaces subprocess execution (for testing).
func WithCommandRunner(runner CommandRunner) Option {
	return func(f *Fetcher) {
		if runner != nil {
			f.run = runner
		}
	}
}

// WithTimeout bounds one download. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// New constructs a Fetcher. Empty values fall back to yt-dlp and mp3.
func New(binary, audioFormat string, opts ...Option) *Fetcher {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	audioFormat = strings.TrimSpace(audioFormat)
	if audioFormat == "" {
		audioFormat = "mp3"
	}
	f := &Fetcher{binary: binary, audioFormat: audioFormat, run: runCombined}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Binary returns the configured executable.
func (f *Fetcher) Binary() string {
	return f.binary
}

// Fetch downloads the audio of rawURL into dest, overwriting any previous
// file, and returns dest.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dest string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}
	if strings.TrimSpace(dest) == "" {
		return "", services.Wrap(services.ErrDownload, stage, "fetch", "destination path required", nil)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	output, err := f.run(ctx, f.binary, f.buildArgs(strings.TrimSpace(rawURL), dest)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", services.Wrap(services.ErrDownload, stage, f.binary, "interrupted", ctxErr)
		}
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = "yt-dlp failed"
		}
		return "", services.Wrap(services.ErrDownload, stage, f.binary, detail, err)
	}

	info, err := os.Stat(dest)
	if err != nil || info.IsDir() {
		return "", services.Wrap(services.ErrDownload, stage, f.binary,
			fmt.Sprintf("expected audio file %s was not produced", dest), err)
	}
	return dest, nil
}

func (f *Fetcher) buildArgs(rawURL, dest string) []string {
	return []string{
		"-x",
		"--audio-format", f.audioFormat,
		"--no-playlist",
		"--force-overwrites",
		"-o", dest,
		rawURL,
	}
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return services.Wrap(services.ErrDownload, stage, "validate url", "url required", nil)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return services.Wrap(services.ErrDownload, stage, "validate url", fmt.Sprintf("invalid url %q", trimmed), err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return services.Wrap(services.ErrDownload, stage, "validate url",
			fmt.Sprintf("%q is not an http(s) url", trimmed), nil)
	}
	return nil
}

// LooksLikeURL reports whether input is a single http(s) URL token.
func LooksLikeURL(input string) bool {
	trimmed := strings.TrimSpace(input)
	if strings.ContainsAny(trimmed, " \t") {
		return false
	}
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return ValidateURL(trimmed) == nil
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
		return output, err
	}
	return output, nil
}
