package chunking

import "strings"

// Strategy names accepted by Splitter.
const (
	StrategyWindow    = "window"
	StrategyRecursive = "recursive"
)

// Splitter binds a strategy to its size parameters.
type Splitter struct {
	Strategy  string
	ChunkSize int
	Overlap   int
}

// Split applies the configured strategy. Unknown strategies use windows.
func (s Splitter) Split(text string) []string {
	if strings.EqualFold(strings.TrimSpace(s.Strategy), StrategyRecursive) {
		return SplitRecursive(text, s.ChunkSize, s.Overlap)
	}
	return Split(text, s.ChunkSize, s.Overlap)
}
