package config

import (
	"errors"
	"fmt"
	"regexp"
)

var modelNamePattern = regexp.MustCompile(`^(tiny|base|small|medium|large)(\.en|-v[0-9]+(-turbo)?|-turbo)?$`)

// Validate ensures the configuration is usable. A missing LLM credential is
// deliberately not a validation failure: it surfaces when a question is asked.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case BackendFasterWhisper, BackendWhisperX:
	default:
		return fmt.Errorf("transcription.backend must be %q or %q, got %q", BackendFasterWhisper, BackendWhisperX, c.Transcription.Backend)
	}
	if !ValidModelSize(c.Transcription.ModelSize) {
		return fmt.Errorf("transcription.model_size %q is not a whisper model (tiny, base, small, medium, large)", c.Transcription.ModelSize)
	}
	switch c.Transcription.Device {
	case "cpu", "cuda", "auto":
	default:
		return fmt.Errorf("transcription.device must be cpu, cuda, or auto, got %q", c.Transcription.Device)
	}
	if c.Transcription.BeamSize < 1 {
		return errors.New("transcription.beam_size must be positive")
	}
	return nil
}

func (c *Config) validateChunking() error {
	switch c.Chunking.Strategy {
	case ChunkStrategyWindow, ChunkStrategyRecursive:
	default:
		return fmt.Errorf("chunking.strategy must be %q or %q, got %q", ChunkStrategyWindow, ChunkStrategyRecursive, c.Chunking.Strategy)
	}
	if c.Chunking.Overlap < 0 {
		return errors.New("chunking.overlap must be >= 0")
	}
	if c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return errors.New("chunking.overlap must be smaller than chunking.chunk_size")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if c.Embedding.BatchSize > 2048 {
		return errors.New("embedding.batch_size must be <= 2048")
	}
	if c.Embedding.Concurrency > 16 {
		return errors.New("embedding.concurrency must be <= 16")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

// ValidModelSize reports whether name is a whisper model identifier.
func ValidModelSize(name string) bool {
	return modelNamePattern.MatchString(name)
}
