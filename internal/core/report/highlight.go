package report

import (
	"strings"
	"unicode/utf8"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

// HighlightLine translates a global opcode partition into spans for a
// single line. lineStart is the absolute rune offset of the line inside
// its text and side selects which text the line belongs to. Span offsets
// are relative to the line and clipped to its bounds. Regions that are
// zero-width on the chosen side, such as an Insert seen from text 1,
// produce no span. The function keeps no state between calls, so lines
// may be highlighted in any order or concurrently.
func HighlightLine(lineText string, lineStart int, opcodes []domain.Opcode, side domain.Side) []domain.HighlightSpan {
	lineEnd := lineStart + utf8.RuneCountInString(lineText)

	var spans []domain.HighlightSpan
	for _, op := range opcodes {
		start, end := op.AStart, op.AEnd
		if side == domain.SideB {
			start, end = op.BStart, op.BEnd
		}
		if end <= lineStart {
			continue
		}
		if start >= lineEnd {
			// Opcodes are ordered on both sides, nothing later can overlap.
			break
		}

		s := max(start, lineStart)
		e := min(end, lineEnd)
		if e <= s {
			continue
		}

		span := domain.HighlightSpan{
			Start: s - lineStart,
			End:   e - lineStart,
			Kind:  op.Tag,
		}
		if n := len(spans); n > 0 && spans[n-1].End == span.Start && spans[n-1].Kind == span.Kind {
			spans[n-1].End = span.End
			continue
		}
		spans = append(spans, span)
	}
	return spans
}

// SplitLines splits a text into lines annotated with their absolute rune
// offsets, ready to hand to HighlightLine. A trailing newline does not
// open a final empty line, but blank lines in the middle of the text are
// kept.
func SplitLines(text string) []domain.Line {
	if text == "" {
		return nil
	}

	parts := strings.Split(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	lines := make([]domain.Line, 0, len(parts))
	offset := 0
	for _, part := range parts {
		lines = append(lines, domain.Line{Start: offset, Text: part})
		offset += utf8.RuneCountInString(part) + 1
	}
	return lines
}

// HighlightAll computes the spans of every line of one side's text.
func HighlightAll(text string, opcodes []domain.Opcode, side domain.Side) []domain.LineSpans {
	lines := SplitLines(text)
	out := make([]domain.LineSpans, 0, len(lines))
	for _, line := range lines {
		out = append(out, domain.LineSpans{
			Line:  line,
			Spans: HighlightLine(line.Text, line.Start, opcodes, side),
		})
	}
	return out
}
