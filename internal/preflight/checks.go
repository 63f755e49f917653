package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"ytqa/internal/config"
	"ytqa/internal/deps"
	"ytqa/internal/services"
	"ytqa/internal/services/embedding"
	"ytqa/internal/services/llm"
)

const serviceCheckTimeout = 30 * time.Second

// CheckLLM verifies that the chat completion API is reachable and the key is
// valid. It makes a single attempt.
func CheckLLM(ctx context.Context, cfg *config.Config) Result {
	const name = "LLM"
	if cfg.LLM.APIKey == "" {
		return Result{Name: name, Detail: "API key missing (set GROQ_API_KEY)"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, serviceCheckTimeout)
	defer cancel()

	client := llm.NewFromConfig(cfg, llm.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", client.Model())}
}

// CheckEmbedding verifies that the embedding endpoint answers a probe.
func CheckEmbedding(ctx context.Context, cfg *config.Config) Result {
	const name = "Embedding service"
	checkCtx, cancel := context.WithTimeout(ctx, serviceCheckTimeout)
	defer cancel()

	client := embedding.NewFromConfig(cfg)
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s at %s", client.Model(), client.Endpoint())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external programs required by the configured
// download tool and transcription backend.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Download.Binary,
			Description: "Required to download audio",
			VersionArgs: []string{"--version"},
		},
	}
	switch cfg.Transcription.Backend {
	case config.BackendWhisperX:
		requirements = append(requirements, deps.Requirement{
			Name:        "uvx",
			Command:     cfg.Transcription.UVX,
			Description: "Required for WhisperX-driven transcription",
			VersionArgs: []string{"--version"},
		})
	default:
		requirements = append(requirements,
			deps.Requirement{
				Name:        "Python",
				Command:     cfg.Transcription.Python,
				Description: "Runs the faster-whisper helper",
				VersionArgs: []string{"--version"},
			},
			deps.Requirement{
				Name:        "faster-whisper",
				Command:     cfg.Transcription.Python,
				Description: "Python package used for transcription",
				Probe:       []string{"-c", "import faster_whisper"},
			},
		)
	}
	statuses := deps.CheckBinaries(ctx, requirements)
	return append(statuses, deps.CheckFFmpegForYtDlp(cfg.Download.Binary))
}

// summarizeServiceError produces a human-readable summary for health check failures.
func summarizeServiceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (service unreachable)"
	}
	return services.Describe(err)
}
