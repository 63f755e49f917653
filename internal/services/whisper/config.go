package whisper

import "time"

// Backend names.
const (
	BackendFasterWhisper = "faster-whisper"
	BackendWhisperX      = "whisperx"
)

// Defaults mirror the decoding options the transcripts are tuned for.
const (
	DefaultModel       = "base"
	DefaultDevice      = "cpu"
	DefaultComputeType = "int8"
	DefaultBeamSize    = 5
	DefaultPython      = "python3"
	DefaultUVX         = "uvx"
)

// exitModelLoad is the helper's exit status when the model cannot be loaded.
// Any other failure status is a transcription error.
const exitModelLoad = 2

// Config captures runtime settings for transcription.
type Config struct {
	Backend        string
	Device         string
	ComputeType    string
	BeamSize       int
	WordTimestamps bool
	// Python runs the faster-whisper helper.
	Python string
	// UVX runs whisperx.
	UVX     string
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendFasterWhisper
	}
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.ComputeType == "" {
		c.ComputeType = DefaultComputeType
	}
	if c.BeamSize <= 0 {
		c.BeamSize = DefaultBeamSize
	}
	if c.Python == "" {
		c.Python = DefaultPython
	}
	if c.UVX == "" {
		c.UVX = DefaultUVX
	}
	return c
}
