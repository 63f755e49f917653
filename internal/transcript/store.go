package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ytqa/internal/services"
)

const stageStore = "transcript"

// Save writes t to path as indented JSON, replacing any previous file
// atomically. FullText is re-derived from the segments first.
func Save(path string, t Transcript) error {
	t.FullText = JoinText(t.Segments)
	if t.Segments == nil {
		t.Segments = []Segment{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(t); err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".transcript-*.json")
	if err != nil {
		return fmt.Errorf("create temp transcript: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write transcript: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close transcript: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod transcript: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace transcript: %w", err)
	}
	return nil
}

// Load reads a transcript written by Save.
func Load(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Transcript{}, services.Wrap(services.ErrNotFound, stageStore, "load",
				"no transcript yet; transcribe a video first", nil)
		}
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Transcript{}, services.Wrap(services.ErrCorruptData, stageStore, "load", "invalid json", err)
	}
	for _, key := range []string{"full_text", "segments"} {
		raw, ok := keys[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return Transcript{}, services.Wrap(services.ErrCorruptData, stageStore, "load",
				fmt.Sprintf("missing %q", key), nil)
		}
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return Transcript{}, services.Wrap(services.ErrCorruptData, stageStore, "load", "decode transcript", err)
	}
	if t.Segments == nil {
		t.Segments = []Segment{}
	}
	return t, nil
}
