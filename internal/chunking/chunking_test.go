package chunking_test

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"ytqa/internal/chunking"
)

func TestSplitEmptyText(t *testing.T) {
	got := chunking.Split("", 200, 50)
	if len(got) != 1 || got[0] != "" {
		t.Fatalf("Split(\"\") = %q, want [\"\"]", got)
	}
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	got := chunking.Split("Hello world", 200, 50)
	if len(got) != 1 || got[0] != "Hello world" {
		t.Fatalf("unexpected chunks %q", got)
	}
}

func TestSplitCountAndOverlap(t *testing.T) {
	tests := []struct {
		length, size, overlap int
	}{
		{201, 200, 50},
		{350, 200, 50},
		{351, 200, 50},
		{1000, 200, 50},
		{1000, 100, 0},
		{17, 5, 4},
	}
	for _, tt := range tests {
		text := strings.Repeat("abcdefghij", tt.length/10+1)[:tt.length]
		chunks := chunking.Split(text, tt.size, tt.overlap)

		stride := tt.size - tt.overlap
		want := (tt.length-tt.size+stride-1)/stride + 1
		if len(chunks) != want {
			t.Fatalf("L=%d n=%d o=%d: got %d chunks, want %d", tt.length, tt.size, tt.overlap, len(chunks), want)
		}
		for i, chunk := range chunks {
			if utf8.RuneCountInString(chunk) > tt.size {
				t.Fatalf("chunk %d longer than %d", i, tt.size)
			}
			if i == 0 {
				continue
			}
			prev := chunks[i-1]
			if !strings.HasPrefix(chunk, prev[len(prev)-tt.overlap:]) && tt.overlap > 0 {
				t.Fatalf("chunk %d does not share %d runes with previous", i, tt.overlap)
			}
		}
		if !strings.HasSuffix(text, chunks[len(chunks)-1]) {
			t.Fatalf("last chunk does not end the text")
		}
	}
}

func TestSplitCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 10)
	chunks := chunking.Split(text, 4, 1)
	for _, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk split a rune: %q", chunk)
		}
		if n := utf8.RuneCountInString(chunk); n > 4 {
			t.Fatalf("chunk has %d runes", n)
		}
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d (%q)", len(chunks), chunks)
	}
}

func TestSplitNormalizesParameters(t *testing.T) {
	text := strings.Repeat("x", 450)
	if got := chunking.Split(text, 0, 50); len(got) != 3 {
		t.Fatalf("size 0 should fall back to 200 with overlap 50: got %d chunks", len(got))
	}
	if got := chunking.Split(text, 100, 100); len(got) != 5 {
		t.Fatalf("overlap >= size should become 0: got %d chunks", len(got))
	}
	if got := chunking.Split(text, 100, -5); len(got) != 5 {
		t.Fatalf("negative overlap should become 0: got %d chunks", len(got))
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox ", 40)
	a := chunking.Split(text, 64, 16)
	b := chunking.Split(text, 64, 16)
	if strings.Join(a, "|") != strings.Join(b, "|") {
		t.Fatal("split not deterministic")
	}
}

func TestNonBlank(t *testing.T) {
	got := chunking.NonBlank([]string{"", " a ", "  ", "b"})
	if len(got) != 2 || got[0] != " a " || got[1] != "b" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSplitRecursivePrefersWordBoundaries(t *testing.T) {
	text := "Hello world this is a test final segment"
	chunks := chunking.SplitRecursive(text, 16, 6)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %q", chunks)
	}
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > 16 {
			t.Fatalf("chunk %q exceeds size", chunk)
		}
		for _, word := range strings.Fields(chunk) {
			if !strings.Contains(text, word) || strings.Contains(word, " ") {
				t.Fatalf("chunk %q split a word", chunk)
			}
		}
	}
	if chunks[0] != "Hello world this" {
		t.Fatalf("unexpected first chunk %q", chunks[0])
	}
	if chunks[1] != "this is a test" {
		t.Fatalf("expected overlap to carry trailing word, got %q", chunks[1])
	}
}

func TestSplitRecursiveParagraphs(t *testing.T) {
	text := "first paragraph here\n\nsecond one"
	chunks := chunking.SplitRecursive(text, 25, 0)
	if len(chunks) != 2 || chunks[0] != "first paragraph here" || chunks[1] != "second one" {
		t.Fatalf("unexpected chunks %q", chunks)
	}
}

func TestSplitRecursiveLongWordFallsBackToCharacters(t *testing.T) {
	chunks := chunking.SplitRecursive(strings.Repeat("z", 25), 10, 0)
	if len(chunks) != 3 || chunks[2] != "zzzzz" {
		t.Fatalf("unexpected chunks %q", chunks)
	}
}

func TestSplitRecursiveEmpty(t *testing.T) {
	got := chunking.SplitRecursive("", 200, 50)
	if len(got) != 1 || got[0] != "" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSplitterSelectsStrategy(t *testing.T) {
	text := strings.Repeat("word ", 30)
	window := chunking.Splitter{Strategy: chunking.StrategyWindow, ChunkSize: 20, Overlap: 5}
	if got, want := window.Split(text), chunking.Split(text, 20, 5); !reflect.DeepEqual(got, want) {
		t.Fatalf("window splitter = %q, want %q", got, want)
	}
	recursive := chunking.Splitter{Strategy: "Recursive", ChunkSize: 20, Overlap: 5}
	if got, want := recursive.Split(text), chunking.SplitRecursive(text, 20, 5); !reflect.DeepEqual(got, want) {
		t.Fatalf("recursive splitter = %q, want %q", got, want)
	}
	if got := (chunking.Splitter{}).Split(""); len(got) != 1 || got[0] != "" {
		t.Fatalf("zero splitter on empty text = %q", got)
	}
}
