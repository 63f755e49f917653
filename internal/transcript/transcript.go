// Package transcript defines timestamped transcripts and their on-disk form.
package transcript

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Segment is one recognized speech span.
type Segment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Text      string  `json:"text"`
}

// Transcript is the result of one transcription run.
type Transcript struct {
	Language string    `json:"language"`
	FullText string    `json:"full_text"`
	Segments []Segment `json:"segments"`

	// Not persisted.
	LanguageProbability float64 `json:"-"`
	Duration            float64 `json:"-"`
}

// RawSegment is a span as reported by a recognizer, before normalization.
type RawSegment struct {
	Start float64
	End   float64
	Text  string
}

// Assemble normalizes recognizer output into a Transcript: texts are trimmed,
// segments sorted by start (stable), end clamped to start, timestamps
// formatted, and FullText derived.
func Assemble(language string, raw []RawSegment) Transcript {
	segments := make([]Segment, 0, len(raw))
	for _, r := range raw {
		start := sanitizeSeconds(r.Start)
		end := sanitizeSeconds(r.End)
		if end < start {
			end = start
		}
		segments = append(segments, Segment{
			Start:     start,
			End:       end,
			StartTime: FormatTimestamp(start),
			EndTime:   FormatTimestamp(end),
			Text:      strings.TrimSpace(r.Text),
		})
	}
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	return Transcript{
		Language: strings.TrimSpace(language),
		FullText: JoinText(segments),
		Segments: segments,
	}
}

// JoinText returns the space-joined segment texts in order.
func JoinText(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

// FormatTimestamp renders seconds as MM:SS. Minutes are not capped at 59.
func FormatTimestamp(seconds float64) string {
	seconds = sanitizeSeconds(seconds)
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Line renders a segment the way the surfaces display it.
func (s Segment) Line() string {
	return fmt.Sprintf("[%s - %s] %s", s.StartTime, s.EndTime, s.Text)
}

func sanitizeSeconds(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
