package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForYtDlp reports the FFmpeg binary yt-dlp will use for audio
// extraction.
//
// Standalone yt-dlp bundles ship ffmpeg in the same directory and yt-dlp
// prefers that copy; otherwise it resolves "ffmpeg" from PATH.
func CheckFFmpegForYtDlp(ytdlpCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp to extract audio",
	}

	if binary := strings.TrimSpace(ytdlpCommand); binary != "" {
		if resolved, err := exec.LookPath(binary); err == nil {
			candidate := filepath.Join(filepath.Dir(resolved), executableName("ffmpeg"))
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				result.Command = candidate
				result.Available = true
				return result
			}
		}
	}

	if ffmpegPath, err := exec.LookPath("ffmpeg"); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = "ffmpeg"
	result.Detail = fmt.Sprintf("binary %q not found", "ffmpeg")
	return result
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
