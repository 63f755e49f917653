package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"ytqa/internal/language"
	"ytqa/internal/services"
	"ytqa/internal/transcript"
)

// Index URLs passed to uvx when resolving whisperx.
const (
	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL = "https://pypi.org/simple"
)

// modelLoadMarkers identify whisperx failures caused by fetching or loading
// the model rather than decoding the audio.
var modelLoadMarkers = []string{
	"failed to load model",
	"unable to load model",
	"invalid model size",
	"localentrynotfounderror",
	"couldn't connect to 'https://huggingface.co'",
	"repository not found",
	"error downloading",
	"no such file or directory: 'model.bin'",
}

// whisperXSegment represents a transcribed segment from WhisperX JSON output.
type whisperXSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXPayload struct {
	Language string            `json:"language"`
	Segments []whisperXSegment `json:"segments"`
}

func (s *Service) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	return cmd.CombinedOutput()
}

func (s *Service) whisperXArgs(audioPath, outputDir, modelSize string) []string {
	args := make([]string, 0, 24)
	if s.cfg.Device == "cuda" {
		args = append(args, "--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}
	args = append(args,
		"whisperx",
		audioPath,
		"--model", modelSize,
		"--device", s.cfg.Device,
		"--compute_type", s.cfg.ComputeType,
		"--beam_size", strconv.Itoa(s.cfg.BeamSize),
		"--output_dir", outputDir,
		"--output_format", "json",
	)
	if s.cfg.WordTimestamps {
		args = append(args, "--highlight_words", "False")
	} else {
		args = append(args, "--no_align")
	}
	return args
}

func (s *Service) transcribeWhisperX(ctx context.Context, audioPath, modelSize string, progress ProgressFunc) (transcript.Transcript, error) {
	outputDir, err := os.MkdirTemp("", "ytqa-whisperx-")
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "whisperx", "create output dir", err)
	}
	defer os.RemoveAll(outputDir)

	output, runErr := s.run(ctx, s.cfg.UVX, s.whisperXArgs(audioPath, outputDir, modelSize)...)
	if err := interrupted(ctx); err != nil {
		return transcript.Transcript{}, err
	}
	if runErr != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = runErr.Error()
		}
		marker := services.ErrTranscription
		if isModelLoadFailure(detail) {
			marker = services.ErrModelLoad
		}
		return transcript.Transcript{}, services.Wrap(marker, stage, "whisperx", lastLines(detail, 5), runErr)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	payload, err := loadWhisperXJSON(filepath.Join(outputDir, base+".json"))
	if err != nil {
		return transcript.Transcript{}, services.Wrap(services.ErrTranscription, stage, "whisperx", "read result", err)
	}

	raw := make([]transcript.RawSegment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		r := transcript.RawSegment{Start: seg.Start, End: seg.End, Text: seg.Text}
		raw = append(raw, r)
		if progress != nil {
			progress(r, 0)
		}
	}
	result := transcript.Assemble(language.Normalize(payload.Language), raw)
	if n := len(result.Segments); n > 0 {
		result.Duration = result.Segments[n-1].End
	}
	return result, nil
}

func loadWhisperXJSON(path string) (whisperXPayload, error) {
	var payload whisperXPayload
	data, err := os.ReadFile(path)
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload, nil
}

func isModelLoadFailure(output string) bool {
	lower := strings.ToLower(output)
	for _, marker := range modelLoadMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
