package pipeline

import (
	"context"
	"errors"

	"ytqa/internal/language"
	"ytqa/internal/logging"
	"ytqa/internal/services"
	"ytqa/internal/transcript"
)

// Transcribe downloads url into the session, transcribes it, and saves the
// transcript. The saved file is replaced only after the whole transcript has
// been assembled. A second transcription of the same session while one is
// running fails immediately.
func (p *Pipeline) Transcribe(ctx context.Context, sessionID, url string) (result transcript.Transcript, err error) {
	ctx, logger, done := p.begin(ctx, "transcribe", sessionID)
	defer func() { done(err) }()

	sess, err := p.deps.Sessions.Open(sessionID)
	if err != nil {
		return transcript.Transcript{}, err
	}
	lock, err := sess.TryLock()
	if err != nil {
		return transcript.Transcript{}, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("session unlock failed", logging.Error(unlockErr))
		}
	}()

	logger.Info("transcription requested",
		logging.String(logging.FieldEventType, "transcribe_start"),
		logging.String("url", url),
		logging.String("model_size", p.opts.ModelSize),
	)

	var audioPath string
	err = p.runStage(ctx, StageDownload, func(ctx context.Context) error {
		path, err := p.deps.Fetcher.Fetch(ctx, url, sess.AudioPath(p.opts.AudioFormat))
		audioPath = path
		return err
	})
	if err != nil {
		return transcript.Transcript{}, err
	}

	err = p.runStage(ctx, StageTranscribe, func(ctx context.Context) error {
		stageLogger := logging.WithContext(ctx, p.logger)
		sampler := logging.NewProgressSampler(10)
		var segments int
		progress := func(seg transcript.RawSegment, duration float64) {
			segments++
			percent := -1.0
			if duration > 0 {
				percent = seg.End / duration * 100
			}
			if !sampler.ShouldLog(StageTranscribe, percent) {
				return
			}
			stageLogger.Info("transcription progress",
				logging.String(logging.FieldEventType, "transcribe_progress"),
				logging.Int("segments", segments),
				logging.String("position", transcript.FormatTimestamp(seg.End)),
				logging.Float64("percent", percent),
			)
		}
		t, err := p.deps.Transcriber.TranscribeWithProgress(ctx, audioPath, p.opts.ModelSize, progress)
		result = t
		return err
	})
	if err != nil {
		return transcript.Transcript{}, err
	}

	logger.Info("detected language",
		logging.String("language", language.Describe(result.Language, result.LanguageProbability)),
		logging.Int("segments", len(result.Segments)),
	)
	p.deps.Metrics.RecordTranscript(len(result.Segments), result.Duration)

	err = p.runStage(ctx, StageSave, func(context.Context) error {
		return transcript.Save(sess.TranscriptPath(), result)
	})
	if err != nil {
		return transcript.Transcript{}, err
	}
	return result, nil
}

// Segments loads the saved transcript for a session.
func (p *Pipeline) Segments(_ context.Context, sessionID string) (transcript.Transcript, error) {
	sess, err := p.deps.Sessions.Lookup(sessionID)
	if err != nil {
		return transcript.Transcript{}, err
	}
	return loadTranscript(sess.TranscriptPath(), "segments")
}

func loadTranscript(path, op string) (transcript.Transcript, error) {
	t, err := transcript.Load(path)
	if errors.Is(err, services.ErrNotFound) {
		return transcript.Transcript{}, services.Wrap(services.ErrNotFound, StageLoad, op,
			"no transcript yet; transcribe a video first", nil)
	}
	return t, err
}
