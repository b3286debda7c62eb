package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []domain.Line
	}{
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "single line without newline",
			text: "abc",
			want: []domain.Line{{Start: 0, Text: "abc"}},
		},
		{
			name: "trailing newline opens no extra line",
			text: "one\ntwo\n",
			want: []domain.Line{
				{Start: 0, Text: "one"},
				{Start: 4, Text: "two"},
			},
		},
		{
			name: "blank line in the middle is kept",
			text: "one\n\ntwo",
			want: []domain.Line{
				{Start: 0, Text: "one"},
				{Start: 4, Text: ""},
				{Start: 5, Text: "two"},
			},
		},
		{
			name: "offsets count runes not bytes",
			text: "hé\n世界\n",
			want: []domain.Line{
				{Start: 0, Text: "hé"},
				{Start: 3, Text: "世界"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitLines(tc.text)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHighlightLine(t *testing.T) {
	// Alignment of "one\ntwo\nthree\n" with "one\ntoo\nthree\n": the first
	// rune of the middle line is replaced.
	opcodes := []domain.Opcode{
		{Tag: domain.TagEqual, AStart: 0, AEnd: 5, BStart: 0, BEnd: 5},
		{Tag: domain.TagReplace, AStart: 5, AEnd: 6, BStart: 5, BEnd: 6},
		{Tag: domain.TagEqual, AStart: 6, AEnd: 14, BStart: 6, BEnd: 14},
	}

	tests := []struct {
		name      string
		lineText  string
		lineStart int
		side      domain.Side
		want      []domain.HighlightSpan
	}{
		{
			name:     "line before any difference",
			lineText: "one", lineStart: 0, side: domain.SideA,
			want: []domain.HighlightSpan{
				{Start: 0, End: 3, Kind: domain.TagEqual},
			},
		},
		{
			name:     "line containing the difference",
			lineText: "two", lineStart: 4, side: domain.SideA,
			want: []domain.HighlightSpan{
				{Start: 0, End: 1, Kind: domain.TagEqual},
				{Start: 1, End: 2, Kind: domain.TagReplace},
				{Start: 2, End: 3, Kind: domain.TagEqual},
			},
		},
		{
			name:     "same line on the other side",
			lineText: "too", lineStart: 4, side: domain.SideB,
			want: []domain.HighlightSpan{
				{Start: 0, End: 1, Kind: domain.TagEqual},
				{Start: 1, End: 2, Kind: domain.TagReplace},
				{Start: 2, End: 3, Kind: domain.TagEqual},
			},
		},
		{
			name:     "line after the difference",
			lineText: "three", lineStart: 8, side: domain.SideA,
			want: []domain.HighlightSpan{
				{Start: 0, End: 5, Kind: domain.TagEqual},
			},
		},
		{
			name:     "empty line gets no spans",
			lineText: "", lineStart: 4, side: domain.SideA,
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HighlightLine(tc.lineText, tc.lineStart, opcodes, tc.side)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// An insertion is zero-width on the first side and must produce a span only
// on the second.
func TestHighlightLineInsertion(t *testing.T) {
	// "ab" against "aXb".
	opcodes := []domain.Opcode{
		{Tag: domain.TagEqual, AStart: 0, AEnd: 1, BStart: 0, BEnd: 1},
		{Tag: domain.TagInsert, AStart: 1, AEnd: 1, BStart: 1, BEnd: 2},
		{Tag: domain.TagEqual, AStart: 1, AEnd: 2, BStart: 2, BEnd: 3},
	}

	gotA := HighlightLine("ab", 0, opcodes, domain.SideA)
	wantA := []domain.HighlightSpan{
		{Start: 0, End: 2, Kind: domain.TagEqual},
	}
	if diff := cmp.Diff(wantA, gotA); diff != "" {
		t.Errorf("side A spans mismatch (-want +got):\n%s", diff)
	}

	gotB := HighlightLine("aXb", 0, opcodes, domain.SideB)
	wantB := []domain.HighlightSpan{
		{Start: 0, End: 1, Kind: domain.TagEqual},
		{Start: 1, End: 2, Kind: domain.TagInsert},
		{Start: 2, End: 3, Kind: domain.TagEqual},
	}
	if diff := cmp.Diff(wantB, gotB); diff != "" {
		t.Errorf("side B spans mismatch (-want +got):\n%s", diff)
	}
}

func TestHighlightLineMergesAdjacentSpans(t *testing.T) {
	// Two equal regions meet inside one line after a deletion that is
	// invisible on the first side.
	opcodes := []domain.Opcode{
		{Tag: domain.TagEqual, AStart: 0, AEnd: 2, BStart: 0, BEnd: 2},
		{Tag: domain.TagDelete, AStart: 2, AEnd: 3, BStart: 2, BEnd: 2},
		{Tag: domain.TagEqual, AStart: 3, AEnd: 5, BStart: 2, BEnd: 4},
	}

	got := HighlightLine("abcd", 0, opcodes, domain.SideB)
	want := []domain.HighlightSpan{
		{Start: 0, End: 4, Kind: domain.TagEqual},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestHighlightAll(t *testing.T) {
	opcodes := []domain.Opcode{
		{Tag: domain.TagEqual, AStart: 0, AEnd: 5, BStart: 0, BEnd: 5},
		{Tag: domain.TagReplace, AStart: 5, AEnd: 6, BStart: 5, BEnd: 6},
		{Tag: domain.TagEqual, AStart: 6, AEnd: 14, BStart: 6, BEnd: 14},
	}

	got := HighlightAll("one\ntwo\nthree\n", opcodes, domain.SideA)
	want := []domain.LineSpans{
		{
			Line: domain.Line{Start: 0, Text: "one"},
			Spans: []domain.HighlightSpan{
				{Start: 0, End: 3, Kind: domain.TagEqual},
			},
		},
		{
			Line: domain.Line{Start: 4, Text: "two"},
			Spans: []domain.HighlightSpan{
				{Start: 0, End: 1, Kind: domain.TagEqual},
				{Start: 1, End: 2, Kind: domain.TagReplace},
				{Start: 2, End: 3, Kind: domain.TagEqual},
			},
		},
		{
			Line: domain.Line{Start: 8, Text: "three"},
			Spans: []domain.HighlightSpan{
				{Start: 0, End: 5, Kind: domain.TagEqual},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("line spans mismatch (-want +got):\n%s", diff)
	}
}
