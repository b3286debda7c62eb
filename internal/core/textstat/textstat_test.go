package textstat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Stats
	}{
		{
			name: "empty text",
			text: "",
			want: domain.Stats{},
		},
		{
			name: "whitespace only counts zero lines and words",
			text: "  \n\t ",
			want: domain.Stats{Chars: 5},
		},
		{
			name: "single word without newline",
			text: "hello",
			want: domain.Stats{Lines: 1, Words: 1, Chars: 5},
		},
		{
			name: "terminated line",
			text: "hello world\n",
			want: domain.Stats{Lines: 1, Words: 2, Chars: 12},
		},
		{
			name: "two terminated lines",
			text: "one two\nthree\n",
			want: domain.Stats{Lines: 2, Words: 3, Chars: 14},
		},
		{
			name: "blank line in the middle",
			text: "one\n\ntwo",
			want: domain.Stats{Lines: 3, Words: 2, Chars: 8},
		},
		{
			name: "punctuation is not a word",
			text: ". , ! ?",
			want: domain.Stats{Lines: 1, Words: 0, Chars: 7},
		},
		{
			name: "accented runes count once",
			text: "héllo wörld",
			want: domain.Stats{Lines: 1, Words: 2, Chars: 11},
		},
		{
			name: "numbers are words",
			text: "the 2nd line has 42 things",
			want: domain.Stats{Lines: 1, Words: 6, Chars: 26},
		},
		{
			name: "apostrophe stays inside the word",
			text: "don't stop now",
			want: domain.Stats{Lines: 1, Words: 3, Chars: 14},
		},
	}

	counter := NewCounter(logger.NewNopLogger())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := counter.Count(tc.text); got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

// Counting a stream line by line must agree with counting the joined text.
func TestCountReaderMatchesCount(t *testing.T) {
	texts := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"single line", "just one line"},
		{"terminated lines", "one two\nthree\n"},
		{"unterminated last line", "alpha\nbeta"},
		{"blank lines", "\n\nmiddle\n\n"},
		{"whitespace only", "  \n \t \n"},
		{"crlf endings", "first\r\nsecond\r\n"},
	}

	ctx := context.Background()
	counter := NewCounter(logger.NewNopLogger())
	for _, tc := range texts {
		t.Run(tc.name, func(t *testing.T) {
			want := counter.Count(tc.text)
			got, bytesRead, err := counter.CountReader(ctx, strings.NewReader(tc.text))
			if err != nil {
				t.Fatalf("failed to count stream: %v", err)
			}
			if got != want {
				t.Errorf("expected %+v, got %+v", want, got)
			}
			if bytesRead != int64(len(tc.text)) {
				t.Errorf("expected %d bytes read, got %d", len(tc.text), bytesRead)
			}
		})
	}
}

func TestCountReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	counter := NewCounter(logger.NewNopLogger())
	_, _, err := counter.CountReader(ctx, strings.NewReader("some text\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCountReaderError(t *testing.T) {
	errBroken := errors.New("stream broke")

	counter := NewCounter(logger.NewNopLogger())
	_, _, err := counter.CountReader(context.Background(), iotest.ErrReader(errBroken))
	if !errors.Is(err, errBroken) {
		t.Errorf("expected wrapped stream error, got %v", err)
	}
}
