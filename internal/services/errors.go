package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDownload         = errors.New("download failed")
	ErrModelLoad        = errors.New("model load failed")
	ErrTranscription    = errors.New("transcription failed")
	ErrNotFound         = errors.New("not found")
	ErrCorruptData      = errors.New("corrupt data")
	ErrEmbedding        = errors.New("embedding failed")
	ErrAuthentication   = errors.New("authentication failed")
	ErrAnswerGeneration = errors.New("answer generation failed")
	ErrValidation       = errors.New("validation error")
	ErrConfiguration    = errors.New("configuration error")
)

// kinds maps each marker to the name shown to users. Order matters: the first
// marker found in an error chain wins.
var kinds = []struct {
	marker error
	name   string
}{
	{ErrDownload, "DownloadError"},
	{ErrModelLoad, "ModelLoadError"},
	{ErrTranscription, "TranscriptionError"},
	{ErrNotFound, "NotFoundError"},
	{ErrCorruptData, "CorruptDataError"},
	{ErrEmbedding, "EmbeddingError"},
	{ErrAuthentication, "AuthenticationError"},
	{ErrAnswerGeneration, "AnswerGenerationError"},
	{ErrValidation, "ValidationError"},
	{ErrConfiguration, "ConfigurationError"},
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		if err == nil {
			return errors.New(detail)
		}
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the taxonomy name for err, or "Error" when no marker applies.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.name
		}
	}
	return "Error"
}

// Describe renders err as "<Kind>: <message>" for display on a user surface.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	return Kind(err) + ": " + err.Error()
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
