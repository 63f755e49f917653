package whisper

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ytqa/internal/language"
	"ytqa/internal/services"
	"ytqa/internal/transcript"
)

//go:embed assets/transcribe.py
var helperScript []byte

const maxHelperLine = 1 << 20

var writeHelperScript = os.WriteFile

type helperRecord struct {
	Type                string  `json:"type"`
	Language            string  `json:"language"`
	LanguageProbability float64 `json:"language_probability"`
	Duration            float64 `json:"duration"`
	Start               float64 `json:"start"`
	End                 float64 `json:"end"`
	Text                string  `json:"text"`
}

func (s *Service) helperPath() (string, error) {
	s.scriptOnce.Do(func() {
		dir, err := os.MkdirTemp("", "ytqa-whisper-")
		if err != nil {
			s.scriptErr = fmt.Errorf("create helper dir: %w", err)
			return
		}
		path := filepath.Join(dir, "transcribe.py")
		if err := writeHelperScript(path, helperScript, 0o755); err != nil {
			_ = os.RemoveAll(dir)
			s.scriptErr = fmt.Errorf("write helper script: %w", err)
			return
		}
		s.scriptDir = dir
		s.scriptPath = path
	})
	return s.scriptPath, s.scriptErr
}

func (s *Service) fasterWhisperArgs(script, audioPath, modelSize string) []string {
	args := []string{
		script,
		"--audio", audioPath,
		"--model", modelSize,
		"--device", s.cfg.Device,
		"--compute-type", s.cfg.ComputeType,
		"--beam-size", strconv.Itoa(s.cfg.BeamSize),
	}
	if s.cfg.WordTimestamps {
		args = append(args, "--word-timestamps")
	}
	return args
}

func (s *Service) transcribeFasterWhisper(ctx context.Context, audioPath, modelSize string, progress ProgressFunc) (transcript.Transcript, error) {
	script, err := s.helperPath()
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "helper", "prepare helper", err)
	}

	cmd := exec.CommandContext(ctx, s.cfg.Python, s.fasterWhisperArgs(script, audioPath, modelSize)...) //nolint:gosec
	cmd.WaitDelay = 5 * time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, s.cfg.Python, "stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, s.cfg.Python, "start helper", err)
	}

	var (
		info    *helperRecord
		raw     []transcript.RawSegment
		scanErr error
	)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxHelperLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var rec helperRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		switch rec.Type {
		case "info":
			info = &rec
		case "segment":
			seg := transcript.RawSegment{Start: rec.Start, End: rec.End, Text: rec.Text}
			raw = append(raw, seg)
			if progress != nil {
				duration := 0.0
				if info != nil {
					duration = info.Duration
				}
				progress(seg, duration)
			}
		}
	}
	scanErr = scanner.Err()
	if scanErr != nil {
		// Nothing reads stdout from here on, so the helper cannot finish.
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()

	if err := interrupted(ctx); err != nil {
		return transcript.Transcript{}, err
	}
	if scanErr != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "faster-whisper", "read helper output", scanErr)
	}
	if waitErr != nil {
		detail := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			if detail == "" {
				detail = "helper exited with status " + strconv.Itoa(exitErr.ExitCode())
			}
			if exitErr.ExitCode() == exitModelLoad {
				return transcript.Transcript{}, services.Wrap(services.ErrModelLoad, stage, "faster-whisper", detail, waitErr)
			}
		}
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "faster-whisper", detail, waitErr)
	}
	if info == nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "faster-whisper", "helper reported no language info", nil)
	}

	result := transcript.Assemble(language.Normalize(info.Language), raw)
	result.LanguageProbability = info.LanguageProbability
	result.Duration = info.Duration
	return result, nil
}

func secondsToDuration(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
