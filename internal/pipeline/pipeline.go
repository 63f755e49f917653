package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ytqa/internal/logging"
	"ytqa/internal/metrics"
	"ytqa/internal/retrieval"
	"ytqa/internal/services"
	"ytqa/internal/services/whisper"
	"ytqa/internal/session"
	"ytqa/internal/transcript"
)

// Stage names stamped onto contexts, logs, and metrics.
const (
	StageDownload   = "download"
	StageTranscribe = "transcribe"
	StageSave       = "save"
	StageLoad       = "load"
	StageChunk      = "chunk"
	StageIndex      = "index"
	StageSearch     = "search"
	StageAnswer     = "answer"
)

// Fetcher downloads a video's audio track to dest.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) (string, error)
}

// Transcriber turns audio into a transcript, reporting segments as they
// arrive.
type Transcriber interface {
	TranscribeWithProgress(ctx context.Context, audioPath, modelSize string, progress whisper.ProgressFunc) (transcript.Transcript, error)
}

// Chunker splits transcript text for retrieval.
type Chunker interface {
	Split(text string) []string
}

// Retriever indexes chunks and selects the most relevant ones.
type Retriever interface {
	Index(ctx context.Context, chunks []string) (*retrieval.Index, error)
	Search(ctx context.Context, idx *retrieval.Index, question string, k int) ([]string, error)
}

// Answerer produces the final answer from the selected chunks.
type Answerer interface {
	Answer(ctx context.Context, question string, contextChunks []string) (string, error)
}

// Deps are the collaborators a Pipeline drives.
type Deps struct {
	Sessions    *session.Manager
	Fetcher     Fetcher
	Transcriber Transcriber
	Chunker     Chunker
	Retriever   Retriever
	Answerer    Answerer
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Options carry per-action tuning from configuration.
type Options struct {
	ModelSize   string
	AudioFormat string
	TopK        int
}

// Pipeline executes transcribe and ask actions.
type Pipeline struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
}

// New constructs a Pipeline.
func New(deps Deps, opts Options) *Pipeline {
	if opts.ModelSize == "" {
		opts.ModelSize = "base"
	}
	if opts.AudioFormat == "" {
		opts.AudioFormat = "mp3"
	}
	if opts.TopK <= 0 {
		opts.TopK = retrieval.DefaultTopK
	}
	return &Pipeline{
		deps:   deps,
		opts:   opts,
		logger: logging.NewComponentLogger(deps.Logger, "pipeline"),
	}
}

// Sessions exposes the session manager used by the pipeline.
func (p *Pipeline) Sessions() *session.Manager {
	return p.deps.Sessions
}

// begin stamps the action context and starts metrics.
func (p *Pipeline) begin(ctx context.Context, action, sessionID string) (context.Context, *slog.Logger, func(error)) {
	ctx = services.WithSessionID(ctx, sessionID)
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, p.logger).With(logging.String("action", action))
	finish := p.deps.Metrics.RecordActionStart(action)
	started := time.Now()
	return ctx, logger, func(err error) {
		finish(err)
		if err != nil {
			logger.Error(action+" failed",
				logging.String(logging.FieldEventType, "action_failure"),
				logging.Duration("elapsed", time.Since(started)),
				logging.Error(err),
			)
			return
		}
		logger.Info(action+" completed",
			logging.String(logging.FieldEventType, "action_complete"),
			logging.Duration("elapsed", time.Since(started)),
		)
	}
}

// runStage runs fn with the stage stamped on ctx, logging and recording the
// outcome.
func (p *Pipeline) runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, p.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	err := fn(stageCtx)
	elapsed := time.Since(started)
	p.deps.Metrics.RecordStage(name, elapsed, err, services.Kind(err))
	if err != nil {
		logger.Debug("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
		)
		return err
	}
	logger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}
