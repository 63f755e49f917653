package config

const (
	defaultConfigPath           = "~/.config/ytqa/config.toml"
	defaultDataDir              = "~/.local/share/ytqa"
	defaultLogDir               = "~/.local/share/ytqa/logs"
	defaultDownloadBinary       = "yt-dlp"
	defaultAudioFormat          = "mp3"
	defaultDownloadTimeout      = 1800
	defaultTranscriptionBackend = BackendFasterWhisper
	defaultModelSize            = "base"
	defaultDevice               = "cpu"
	defaultComputeType          = "int8"
	defaultBeamSize             = 5
	defaultPython               = "python3"
	defaultUVX                  = "uvx"
	defaultTranscriptionTimeout = 7200
	defaultChunkStrategy        = ChunkStrategyWindow
	defaultChunkSize            = 200
	defaultChunkOverlap         = 50
	defaultEmbeddingBaseURL     = "http://127.0.0.1:8080/v1/embeddings"
	defaultEmbeddingModel       = "sentence-transformers/all-MiniLM-L6-v2"
	defaultEmbeddingBatchSize   = 32
	defaultEmbeddingConcurrency = 2
	defaultEmbeddingTimeout     = 60
	defaultTopK                 = 4
	defaultLLMBaseURL           = "https://api.groq.com/openai/v1/chat/completions"
	defaultLLMModel             = "llama-3.1-8b-instant"
	defaultLLMTimeoutSeconds    = 60
	defaultLLMRetryAttempts     = 1
	defaultServerBind           = "127.0.0.1:8501"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

// Transcription backends.
const (
	BackendFasterWhisper = "faster-whisper"
	BackendWhisperX      = "whisperx"
)

// Chunking strategies.
const (
	ChunkStrategyWindow    = "window"
	ChunkStrategyRecursive = "recursive"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Download: Download{
			Binary:         defaultDownloadBinary,
			AudioFormat:    defaultAudioFormat,
			TimeoutSeconds: defaultDownloadTimeout,
		},
		Transcription: Transcription{
			Backend:        defaultTranscriptionBackend,
			ModelSize:      defaultModelSize,
			Device:         defaultDevice,
			ComputeType:    defaultComputeType,
			BeamSize:       defaultBeamSize,
			WordTimestamps: true,
			Python:         defaultPython,
			UVX:            defaultUVX,
			TimeoutSeconds: defaultTranscriptionTimeout,
		},
		Chunking: Chunking{
			Strategy:  defaultChunkStrategy,
			ChunkSize: defaultChunkSize,
			Overlap:   defaultChunkOverlap,
		},
		Embedding: Embedding{
			BaseURL:        defaultEmbeddingBaseURL,
			Model:          defaultEmbeddingModel,
			BatchSize:      defaultEmbeddingBatchSize,
			Concurrency:    defaultEmbeddingConcurrency,
			TimeoutSeconds: defaultEmbeddingTimeout,
			CacheEnabled:   true,
		},
		Retrieval: Retrieval{
			TopK: defaultTopK,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
