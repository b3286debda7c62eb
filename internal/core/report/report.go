package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/valyala/bytebufferpool"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/ports"
)

// DefaultMaxChars bounds the positional walk of a report. The bound exists
// for rendering performance only and is always disclosed in the output.
const DefaultMaxChars = 100

// Display tokens for runes that would destabilize the table across
// terminals and encodings.
const (
	tokenEnd     = "(end)"
	tokenSpace   = "(sp)"
	tokenNewline = "(nl)"
	tokenTab     = "(tab)"
	tokenCR      = "(cr)"

	markMatch    = "✓"
	markMismatch = "✗"

	cellWidth = 5
)

// Config holds configuration for the reporter.
type Config struct {
	MaxChars int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		MaxChars: DefaultMaxChars,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.MaxChars <= 0 {
		return errors.New("max chars must be greater than 0")
	}
	return nil
}

// Reporter renders bounded character-by-character comparison reports.
type Reporter struct {
	config Config
	logger ports.Logger
	cond   *runewidth.Condition
}

// NewReporter creates a new reporter.
func NewReporter(config Config, logger ports.Logger) (*Reporter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Reporter{
		config: config,
		logger: logger,
		cond:   &runewidth.Condition{StrictEmojiNeutral: true},
	}, nil
}

// Report renders the character-by-character view of a pair under the
// opcode partition the caller computed for the same two texts. The walk
// covers at most MaxChars positions of the longer text and states the
// truncation explicitly when it cuts the walk short.
func (r *Reporter) Report(a, b string, opcodes []domain.Opcode) domain.Report {
	ar := []rune(a)
	br := []rune(b)
	la, lb := len(ar), len(br)

	matching, diffs := 0, 0
	for _, op := range opcodes {
		if op.Tag == domain.TagEqual {
			matching += op.ALen()
		} else {
			diffs++
		}
	}

	percent := 100.0
	if la+lb > 0 {
		percent = 2.0 * float64(matching) * 100 / float64(la+lb)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "COMPARISON RESULTS (Similarity: %.1f%%)\n", percent)
	fmt.Fprintf(buf, "Text 1: %d chars | Text 2: %d chars | Matching: %d chars\n", la, lb, matching)
	if diffs > 0 {
		fmt.Fprintf(buf, "Found %d differences\n", diffs)
	}

	if la == 0 && lb == 0 {
		buf.WriteString("\nBoth texts are empty.\n")
		r.logger.Debug("Rendered report for empty pair")
		return domain.Report{Text: buf.String()}
	}
	if la == 0 {
		buf.WriteString("Text 1 is empty\n")
	} else if lb == 0 {
		buf.WriteString("Text 2 is empty\n")
	}

	buf.WriteString(strings.Repeat("=", 80))
	buf.WriteString("\n\n")
	buf.WriteString("CHARACTER-BY-CHARACTER VIEW:\n")
	buf.WriteString("Tip: Look for '" + markMismatch + "' marks and descriptions to identify differences\n\n")
	buf.WriteString("Pos | Text 1 | Text 2 | Match | Description\n")
	buf.WriteString(strings.Repeat("-", 70))
	buf.WriteString("\n")

	maxLen := max(la, lb)
	shown := min(maxLen, r.config.MaxChars)
	mismatches := 0

	for i := 0; i < shown; i++ {
		hasA, hasB := i < la, i < lb

		cellA, cellB := tokenEnd, tokenEnd
		if hasA {
			cellA = displayRune(ar[i])
		}
		if hasB {
			cellB = displayRune(br[i])
		}

		mark, desc := markMatch, "MATCH"
		if !hasA || !hasB || ar[i] != br[i] {
			mismatches++
			mark = markMismatch
			switch {
			case !hasA:
				desc = fmt.Sprintf("INSERTION at pos %d", i)
			case !hasB:
				desc = fmt.Sprintf("DELETION at pos %d", i)
			default:
				desc = fmt.Sprintf("CHANGE at pos %d", i)
			}
		}

		fmt.Fprintf(buf, "%3d | %s | %s | %s | %s\n",
			i, r.pad(cellA), r.pad(cellB), r.pad(mark), desc)
	}

	truncated := maxLen > shown
	if truncated {
		buf.WriteString("...\n")
		fmt.Fprintf(buf, "(Showing first %d characters for performance)\n", shown)
	}
	if mismatches > 0 {
		fmt.Fprintf(buf, "\nSUMMARY: %d mismatches found.\n", mismatches)
	}

	r.logger.Debug("Rendered report",
		"compared", shown,
		"mismatches", mismatches,
		"truncated", truncated,
	)

	return domain.Report{
		Text:       buf.String(),
		Compared:   shown,
		Mismatches: mismatches,
		DiffCount:  diffs,
		Truncated:  truncated,
	}
}

// HighlightLine implements ports.Highlighter by delegating to the pure
// package function.
func (r *Reporter) HighlightLine(lineText string, lineStart int, opcodes []domain.Opcode, side domain.Side) []domain.HighlightSpan {
	return HighlightLine(lineText, lineStart, opcodes, side)
}

// StatusLine is the one-line summary front ends show next to the report.
func StatusLine(diffCount int, score float64) string {
	if diffCount == 0 && score >= 1.0 {
		return "Texts are identical!"
	}
	return fmt.Sprintf("Found %d differences - %.1f%% similarity", diffCount, score*100)
}

// pad fills a table cell to the fixed width, measured in display columns
// so wide runes do not skew the table.
func (r *Reporter) pad(s string) string {
	if r.cond.StringWidth(s) >= cellWidth {
		return s
	}
	return r.cond.FillRight(s, cellWidth)
}

// displayRune maps a rune to its stable display token.
func displayRune(ch rune) string {
	switch ch {
	case ' ':
		return tokenSpace
	case '\n':
		return tokenNewline
	case '\t':
		return tokenTab
	case '\r':
		return tokenCR
	}
	if ch < 0x20 {
		return fmt.Sprintf("(#%d)", ch)
	}
	return string(ch)
}
