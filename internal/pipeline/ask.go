package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ytqa/internal/chunking"
	"ytqa/internal/logging"
	"ytqa/internal/retrieval"
	"ytqa/internal/services"
	"ytqa/internal/transcript"
)

// Ask answers question from the session's saved transcript. Asking before any
// transcription exists yields a NotFoundError.
func (p *Pipeline) Ask(ctx context.Context, sessionID, question string) (reply string, err error) {
	ctx, logger, done := p.begin(ctx, "ask", sessionID)
	defer func() { done(err) }()

	question = strings.TrimSpace(question)
	if question == "" {
		return "", services.Wrap(services.ErrValidation, "ask", "ask", "question required", nil)
	}
	sess, err := p.deps.Sessions.Lookup(sessionID)
	if err != nil {
		return "", err
	}

	var t transcript.Transcript
	err = p.runStage(ctx, StageLoad, func(context.Context) error {
		loaded, err := loadTranscript(sess.TranscriptPath(), "ask")
		t = loaded
		return err
	})
	if err != nil {
		return "", err
	}

	var chunks []string
	err = p.runStage(ctx, StageChunk, func(ctx context.Context) error {
		chunks = chunking.NonBlank(p.deps.Chunker.Split(t.FullText))
		return ctx.Err()
	})
	if err != nil {
		return "", err
	}

	var idx *retrieval.Index
	err = p.runStage(ctx, StageIndex, func(ctx context.Context) error {
		built, err := p.deps.Retriever.Index(ctx, chunks)
		idx = built
		return err
	})
	if err != nil {
		return "", err
	}

	var selected []string
	err = p.runStage(ctx, StageSearch, func(ctx context.Context) error {
		found, err := p.deps.Retriever.Search(ctx, idx, question, p.opts.TopK)
		selected = found
		return err
	})
	if err != nil {
		return "", err
	}
	p.deps.Metrics.RecordRetrieval(len(chunks), len(selected))
	logger.Info("context selected",
		logging.Int("chunks", len(chunks)),
		logging.Int("selected", len(selected)),
	)

	err = p.runStage(ctx, StageAnswer, func(ctx context.Context) error {
		out, err := p.deps.Answerer.Answer(ctx, question, selected)
		reply = out
		return err
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// Describe renders an action error for display, including a hint for the
// error kinds a user can fix.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	msg := services.Describe(err)
	switch {
	case errors.Is(err, services.ErrAuthentication):
		return fmt.Sprintf("%s (set GROQ_API_KEY or llm.api_key)", msg)
	case errors.Is(err, services.ErrEmbedding):
		return fmt.Sprintf("%s (is the embedding server running?)", msg)
	}
	return msg
}
