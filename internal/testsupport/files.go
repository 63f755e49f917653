package testsupport

import (
	"path/filepath"
	"testing"

	"ytqa/internal/config"
	"ytqa/internal/session"
	"ytqa/internal/transcript"
)

// SeedTranscript stores a transcript for the given session as if a
// transcription had completed, returning the session handle.
func SeedTranscript(t testing.TB, cfg *config.Config, sessionID string, tr transcript.Transcript) session.Session {
	t.Helper()

	manager := session.NewManager(cfg.SessionsDir())
	sess, err := manager.Open(sessionID)
	if err != nil {
		t.Fatalf("open session %s: %v", sessionID, err)
	}
	if err := transcript.Save(sess.TranscriptPath(), tr); err != nil {
		t.Fatalf("save transcript to %s: %v", filepath.Base(sess.TranscriptPath()), err)
	}
	return sess
}
