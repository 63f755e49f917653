// Package shell implements the interactive terminal surface: paste a video
// URL to transcribe it, then type questions about it.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"ytqa/internal/language"
	"ytqa/internal/logging"
	"ytqa/internal/pipeline"
	"ytqa/internal/services/ytdlp"
	"ytqa/internal/session"
	"ytqa/internal/transcript"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiRed   = "\x1b[31m"
	ansiCyan  = "\x1b[36m"
)

const helpText = `Commands:
  <url>                 transcribe a video (same as: transcribe <url>)
  transcribe <url>      download and transcribe a video
  session [id]          show or switch the active session
  help                  show this help
  exit, quit            leave the shell
Anything else is asked as a question about the current transcript.
Ctrl-C cancels a running action; Ctrl-D leaves.`

// Actions are the pipeline operations the shell triggers.
type Actions interface {
	Transcribe(ctx context.Context, sessionID, url string) (transcript.Transcript, error)
	Ask(ctx context.Context, sessionID, question string) (string, error)
}

// Options configure a Shell.
type Options struct {
	In        io.Reader
	Out       io.Writer
	SessionID string
	// Color enables ANSI styling. Use ColorEnabled to decide for a writer.
	Color bool
	// Interrupts delivers Ctrl-C. Nil installs a SIGINT handler.
	Interrupts <-chan os.Signal
	Logger     *slog.Logger
}

// Shell is a line-oriented REPL over Actions.
type Shell struct {
	actions    Actions
	in         io.Reader
	out        *lockedWriter
	sessionID  string
	color      bool
	interrupts <-chan os.Signal
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New constructs a Shell.
func New(actions Actions, opts Options) *Shell {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if strings.TrimSpace(opts.SessionID) == "" {
		opts.SessionID = session.DefaultID
	}
	return &Shell{
		actions:    actions,
		in:         opts.In,
		out:        &lockedWriter{w: opts.Out},
		sessionID:  opts.SessionID,
		color:      opts.Color,
		interrupts: opts.Interrupts,
		logger:     logging.NewComponentLogger(opts.Logger, "shell"),
	}
}

// ColorEnabled reports whether w is a terminal that should receive ANSI
// styling.
func ColorEnabled(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SessionID returns the active session.
func (s *Shell) SessionID() string {
	return s.sessionID
}

// Run reads commands until EOF, exit, or ctx is cancelled. Action failures
// are printed and never end the loop.
func (s *Shell) Run(ctx context.Context) error {
	interrupts := s.interrupts
	if interrupts == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		defer signal.Stop(ch)
		interrupts = ch
	}
	watchDone := make(chan struct{})
	defer close(watchDone)
	go s.watchInterrupts(interrupts, watchDone)

	s.printf("%s\n", s.style(ansiBold, "ytqa interactive shell")+" (session "+s.sessionID+"). Type help for commands.")
	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		s.prompt()
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			s.printf("\n")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			s.printf("\n")
			return <-readErr
		}
		if quit := s.handle(ctx, strings.TrimSpace(line)); quit {
			return nil
		}
	}
}

func (s *Shell) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	case "help", "?":
		s.printf("%s\n", helpText)
		return false
	case "session":
		s.printf("session: %s\n", s.sessionID)
		return false
	case "transcribe":
		s.printf("usage: transcribe <url>\n")
		return false
	}

	// Command words only apply when their argument fits; anything else is a
	// question that happens to start with that word.
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(command) {
	case "session":
		if session.ValidateID(rest) == nil {
			s.sessionID = rest
			s.printf("switched to session %s\n", rest)
			return false
		}
	case "transcribe":
		if ytdlp.LooksLikeURL(rest) {
			s.runAction(ctx, func(actx context.Context) error { return s.transcribe(actx, rest) })
			return false
		}
	}
	if ytdlp.LooksLikeURL(line) {
		s.runAction(ctx, func(actx context.Context) error { return s.transcribe(actx, line) })
		return false
	}
	s.runAction(ctx, func(actx context.Context) error { return s.ask(actx, line) })
	return false
}

func (s *Shell) transcribe(ctx context.Context, url string) error {
	s.printf("%s\n", s.style(ansiDim, "Transcribing "+url+" ..."))
	t, err := s.actions.Transcribe(ctx, s.sessionID, url)
	if err != nil {
		return err
	}
	for _, seg := range t.Segments {
		s.printf("%s\n", seg.Line())
	}
	s.printf("%s\n", s.style(ansiDim, fmt.Sprintf("Language: %s, %d segments",
		language.Describe(t.Language, t.LanguageProbability), len(t.Segments))))
	return nil
}

func (s *Shell) ask(ctx context.Context, question string) error {
	reply, err := s.actions.Ask(ctx, s.sessionID, question)
	if err != nil {
		return err
	}
	s.printf("%s\n", reply)
	return nil
}

// runAction runs fn with a context that the next Ctrl-C cancels.
func (s *Shell) runAction(ctx context.Context, fn func(context.Context) error) {
	actx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	err := fn(actx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || (actx.Err() != nil && ctx.Err() == nil):
		s.printf("%s\n", s.style(ansiDim, "Cancelled."))
	default:
		s.printError(err)
	}
}

func (s *Shell) watchInterrupts(interrupts <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-interrupts:
			s.mu.Lock()
			cancel := s.cancel
			s.mu.Unlock()
			if cancel != nil {
				s.logger.Debug("action interrupted")
				cancel()
				continue
			}
			s.printf("\n(type exit or press Ctrl-D to leave)\n")
			s.prompt()
		}
	}
}

func (s *Shell) printError(err error) {
	s.printf("%s\n", s.style(ansiRed, pipeline.Describe(err)))
}

func (s *Shell) prompt() {
	s.printf("%s ", s.style(ansiCyan, "ytqa>"))
}

func (s *Shell) style(code, text string) string {
	if !s.color {
		return text
	}
	return code + text + ansiReset
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
