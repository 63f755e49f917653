// Package session maps session identifiers to their private working
// directories under the data dir and guards transcription with a file lock.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ytqa/internal/services"
)

// DefaultID is used by the terminal surfaces when no session is named.
const DefaultID = "default"

const (
	transcriptFile = "transcript.json"
	lockFile       = ".lock"
	audioBase      = "audio"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidateID rejects identifiers that could escape the sessions directory.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) || strings.Contains(id, "..") {
		return services.Wrap(services.ErrValidation, "session", "validate id",
			fmt.Sprintf("invalid session id %q", id), nil)
	}
	return nil
}

// Manager resolves sessions below a root directory.
type Manager struct {
	root string
}

// NewManager returns a manager rooted at dir (usually config.SessionsDir()).
func NewManager(dir string) *Manager {
	return &Manager{root: dir}
}

// Root returns the sessions directory.
func (m *Manager) Root() string {
	return m.root
}

// Session is one isolated working directory.
type Session struct {
	ID  string
	Dir string
}

// Open resolves id to its Session, creating the directory.
func (m *Manager) Open(id string) (Session, error) {
	if err := ValidateID(id); err != nil {
		return Session{}, err
	}
	dir := filepath.Join(m.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Session{}, fmt.Errorf("create session dir: %w", err)
	}
	return Session{ID: id, Dir: dir}, nil
}

// Lookup resolves id without creating anything.
func (m *Manager) Lookup(id string) (Session, error) {
	if err := ValidateID(id); err != nil {
		return Session{}, err
	}
	return Session{ID: id, Dir: filepath.Join(m.root, id)}, nil
}

// AudioPath returns the downloaded audio location for the given extension.
func (s Session) AudioPath(format string) string {
	format = strings.TrimPrefix(strings.TrimSpace(format), ".")
	if format == "" {
		format = "mp3"
	}
	return filepath.Join(s.Dir, audioBase+"."+format)
}

// TranscriptPath returns the persisted transcript location.
func (s Session) TranscriptPath() string {
	return filepath.Join(s.Dir, transcriptFile)
}

// HasTranscript reports whether a transcript has been saved.
func (s Session) HasTranscript() bool {
	info, err := os.Stat(s.TranscriptPath())
	return err == nil && info.Mode().IsRegular()
}

// Lock is a held exclusive session lock.
type Lock struct {
	fl *flock.Flock
}

// TryLock acquires the session's exclusive lock without waiting. A session
// already held by another transcription yields a validation error.
func (s Session) TryLock() (*Lock, error) {
	fl := flock.New(filepath.Join(s.Dir, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "session", "lock",
			fmt.Sprintf("session %q is busy with another transcription", s.ID), nil)
	}
	return &Lock{fl: fl}, nil
}

// Unlock releases the lock. It is safe to call on a nil Lock.
func (l *Lock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// Remove deletes a session directory. Removing a busy session fails.
func (m *Manager) Remove(id string) error {
	s, err := m.Lookup(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(s.Dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "session", "remove",
				fmt.Sprintf("session %q does not exist", id), nil)
		}
		return err
	}
	lock, err := s.TryLock()
	if err != nil {
		return err
	}
	defer lock.Unlock()
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("remove session %q: %w", id, err)
	}
	return nil
}
