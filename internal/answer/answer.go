// Package answer turns retrieved transcript chunks and a question into a
// single grounded chat completion.
package answer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ytqa/internal/logging"
	"ytqa/internal/services"
)

// SystemPrompt instructs the model to stay within the supplied context.
const SystemPrompt = "Use the following pieces of context to answer the question at the end. " +
	"If you don't know the answer, just say that you don't know, don't try to make up an answer."

// Completer issues one chat completion and returns the assistant content.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Answerer stuffs context chunks into a prompt and asks the hosted model.
type Answerer struct {
	llm    Completer
	logger *slog.Logger
}

// New constructs an Answerer around the given completion client.
func New(llm Completer, logger *slog.Logger) *Answerer {
	return &Answerer{llm: llm, logger: logging.NewComponentLogger(logger, "answer")}
}

// BuildPrompt renders the user message: the chunks in the given order
// separated by blank lines, then the question.
func BuildPrompt(question string, contextChunks []string) string {
	var b strings.Builder
	b.WriteString(strings.Join(contextChunks, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nHelpful Answer:")
	return b.String()
}

// Answer returns the model's reply verbatim. Failures carry the
// AuthenticationError or AnswerGenerationError markers from the client.
func (a *Answerer) Answer(ctx context.Context, question string, contextChunks []string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", services.Wrap(services.ErrValidation, "answer", "answer", "question required", nil)
	}
	if a.llm == nil {
		return "", services.Wrap(services.ErrAnswerGeneration, "answer", "answer", "no language model configured", nil)
	}

	logger := logging.WithContext(ctx, a.logger)
	started := time.Now()
	reply, err := a.llm.Complete(ctx, SystemPrompt, BuildPrompt(question, contextChunks))
	if err != nil {
		logger.Debug("answer generation failed", logging.Error(err))
		return "", err
	}
	logger.Info("answer generated",
		logging.Int("context_chunks", len(contextChunks)),
		logging.Int("answer_chars", len(reply)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return reply, nil
}
