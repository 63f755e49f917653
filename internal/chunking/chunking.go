// Package chunking splits transcript text into overlapping windows for
// retrieval.
package chunking

import "strings"

// Defaults applied when callers pass unusable parameters.
const (
	DefaultChunkSize = 200
	DefaultOverlap   = 50
)

// Normalize returns usable parameters: a non-positive size becomes
// DefaultChunkSize and an overlap outside [0, size) becomes 0.
func Normalize(chunkSize, overlap int) (int, int) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return chunkSize, overlap
}

// Split cuts text into windows of at most chunkSize runes. Window i starts at
// i*(chunkSize-overlap), so neighbours share exactly overlap runes. Text that
// fits in one window, including the empty string, yields a single chunk.
func Split(text string, chunkSize, overlap int) []string {
	chunkSize, overlap = Normalize(chunkSize, overlap)
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	stride := chunkSize - overlap
	chunks := make([]string, 0, (len(runes)-chunkSize+stride-1)/stride+1)
	for start := 0; ; start += stride {
		end := min(start+chunkSize, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// NonBlank drops chunks containing only whitespace.
func NonBlank(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
	}
	return out
}
