package chunking

import (
	"strings"
	"unicode/utf8"
)

var recursiveSeparators = []string{"\n\n", "\n", " ", ""}

// SplitRecursive splits on the coarsest separator present (paragraph, line,
// word, then character) and merges the pieces back into chunks of at most
// chunkSize runes, carrying up to overlap runes of trailing context into the
// next chunk. Chunks are trimmed and never empty, except that empty input
// yields [""] like Split.
func SplitRecursive(text string, chunkSize, overlap int) []string {
	chunkSize, overlap = Normalize(chunkSize, overlap)
	s := recursiveSplitter{size: chunkSize, overlap: overlap}
	chunks := s.split(text, recursiveSeparators)
	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}

type recursiveSplitter struct {
	size    int
	overlap int
}

func (s recursiveSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			separator = candidate
			break
		}
		if strings.Contains(text, candidate) {
			separator = candidate
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if separator == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		for _, piece := range strings.Split(text, separator) {
			if piece != "" {
				pieces = append(pieces, piece)
			}
		}
	}

	var out, pending []string
	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) < s.size {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			out = append(out, s.merge(pending, separator)...)
			pending = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, s.merge(pending, separator)...)
	}
	return out
}

func (s recursiveSplitter) merge(pieces []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)
	joinCost := func(current []string) int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	var docs, current []string
	total := 0
	for _, piece := range pieces {
		length := utf8.RuneCountInString(piece)
		if total+length+joinCost(current) > s.size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (total > 0 && total+length+joinCost(current) > s.size) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		total += length
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
