package textstat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/ports"
)

const readBufferSize = 64 * 1024

// Counter counts lines, words, and characters of texts. A whitespace-only
// text counts zero lines and zero words, matching what the comparison
// summary displays; the character count is always the raw rune count.
type Counter struct {
	logger ports.Logger
}

// NewCounter creates a new statistics counter.
func NewCounter(logger ports.Logger) *Counter {
	return &Counter{logger: logger}
}

// Count computes statistics for an in-memory text.
func (c *Counter) Count(text string) domain.Stats {
	stats := domain.Stats{Chars: utf8.RuneCountInString(text)}
	if strings.TrimSpace(text) == "" {
		return stats
	}
	stats.Lines = countLines(text)
	stats.Words = countWords(text)
	return stats
}

// CountReader computes the same statistics incrementally from a reader,
// line by line, and returns the number of bytes consumed. Word boundaries
// never straddle a newline, so per-line segmentation sums to the whole-text
// counts Count produces.
func (c *Counter) CountReader(ctx context.Context, r io.Reader) (domain.Stats, int64, error) {
	br := bufio.NewReaderSize(r, readBufferSize)

	var stats domain.Stats
	var bytesRead int64
	nonBlank := false

	for {
		select {
		case <-ctx.Done():
			return stats, bytesRead, ctx.Err()
		default:
			// continue
		}

		line, err := br.ReadString('\n')
		if line != "" {
			bytesRead += int64(len(line))
			stats.Chars += utf8.RuneCountInString(line)
			stats.Lines++
			stats.Words += countWords(line)
			if !nonBlank && strings.TrimSpace(line) != "" {
				nonBlank = true
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, bytesRead, fmt.Errorf("read stream: %w", err)
		}
	}

	if !nonBlank {
		stats.Lines = 0
		stats.Words = 0
	}

	c.logger.Debug("Counted stream statistics",
		"lines", stats.Lines,
		"words", stats.Words,
		"chars", stats.Chars,
		"bytes", bytesRead,
	)
	return stats, bytesRead, nil
}

// countLines counts newline-terminated segments plus a final unterminated
// one. Callers gate out whitespace-only text before calling.
func countLines(text string) int {
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// countWords segments with the Unicode word boundary rules and keeps only
// tokens carrying at least one letter or digit, so punctuation and
// whitespace runs do not count as words.
func countWords(text string) int {
	n := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		if wordlike(tokens.Value()) {
			n++
		}
	}
	return n
}

func wordlike(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
