package whisper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"ytqa/internal/config"
	"ytqa/internal/logging"
	"ytqa/internal/services"
	"ytqa/internal/transcript"
)

const stage = "transcribe"

// ProgressFunc receives each segment as the recognizer reports it, together
// with the audio duration when known (zero otherwise).
type ProgressFunc func(segment transcript.RawSegment, duration float64)

// CommandRunner executes name with args and returns the combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Service provides transcription through the configured backend.
type Service struct {
	cfg           Config
	logger        *slog.Logger
	commandRunner CommandRunner

	scriptOnce sync.Once
	scriptDir  string
	scriptPath string
	scriptErr  error
}

// NewService creates a transcription service.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg.withDefaults(),
		logger: logging.NewComponentLogger(logger, "whisper"),
	}
}

// NewFromConfig maps the application configuration onto a Service.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Service {
	t := cfg.Transcription
	return NewService(Config{
		Backend:        t.Backend,
		Device:         t.Device,
		ComputeType:    t.ComputeType,
		BeamSize:       t.BeamSize,
		WordTimestamps: t.WordTimestamps,
		Python:         t.Python,
		UVX:            t.UVX,
		Timeout:        secondsToDuration(t.TimeoutSeconds),
	}, logger)
}

// WithCommandRunner replaces whisperx subprocess execution (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	s.commandRunner = runner
}

// Backend returns the active backend name.
func (s *Service) Backend() string {
	return s.cfg.Backend
}

// Transcribe converts the audio at audioPath into a transcript using the
// named model size.
func (s *Service) Transcribe(ctx context.Context, audioPath, modelSize string) (transcript.Transcript, error) {
	return s.TranscribeWithProgress(ctx, audioPath, modelSize, nil)
}

// TranscribeWithProgress is Transcribe with a per-segment callback.
func (s *Service) TranscribeWithProgress(ctx context.Context, audioPath, modelSize string, progress ProgressFunc) (transcript.Transcript, error) {
	if err := checkAudio(audioPath); err != nil {
		return transcript.Transcript{}, err
	}
	modelSize = strings.ToLower(strings.TrimSpace(modelSize))
	if modelSize == "" {
		modelSize = DefaultModel
	}
	if !config.ValidModelSize(modelSize) {
		return transcript.Transcript{}, services.Wrap(services.ErrModelLoad, stage, "model",
			fmt.Sprintf("unknown whisper model %q", modelSize), nil)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, s.logger)
	logger.Info("transcription started",
		logging.String("backend", s.cfg.Backend),
		logging.String("model", modelSize),
		logging.String("audio", audioPath),
		logging.String(logging.FieldEventType, "transcription_started"),
	)

	var (
		result transcript.Transcript
		err    error
	)
	switch s.cfg.Backend {
	case BackendWhisperX:
		result, err = s.transcribeWhisperX(ctx, audioPath, modelSize, progress)
	case BackendFasterWhisper:
		result, err = s.transcribeFasterWhisper(ctx, audioPath, modelSize, progress)
	default:
		err = services.Wrap(services.ErrConfiguration, stage, "backend",
			fmt.Sprintf("unsupported backend %q", s.cfg.Backend), nil)
	}
	if err != nil {
		return transcript.Transcript{}, err
	}

	logger.Info("transcription completed",
		logging.String("language", result.Language),
		logging.Float64("language_probability", result.LanguageProbability),
		logging.Int("segments", len(result.Segments)),
		logging.String(logging.FieldEventType, "transcription_completed"),
	)
	return result, nil
}

// Close removes the extracted helper script.
func (s *Service) Close() error {
	if s.scriptDir == "" {
		return nil
	}
	return os.RemoveAll(s.scriptDir)
}

func checkAudio(audioPath string) error {
	if strings.TrimSpace(audioPath) == "" {
		return services.Wrap(services.ErrTranscription, stage, "audio", "audio path required", nil)
	}
	info, err := os.Stat(audioPath)
	if err != nil {
		return services.Wrap(services.ErrTranscription, stage, "audio",
			fmt.Sprintf("audio file %s is not readable", audioPath), err)
	}
	if info.IsDir() || info.Size() == 0 {
		return services.Wrap(services.ErrTranscription, stage, "audio",
			fmt.Sprintf("audio file %s is empty", audioPath), nil)
	}
	return nil
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTranscription, stage, "run", "interrupted", err)
	}
	return nil
}
