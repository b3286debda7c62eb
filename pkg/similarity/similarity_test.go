package similarity

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/baditaflorin/l"
)

func quietLogger(t *testing.T) l.Logger {
	t.Helper()
	factory := l.NewStandardFactory()
	log, err := factory.CreateLogger(l.Config{
		Output:     io.Discard,
		JsonFormat: false,
		AsyncWrite: false,
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestTextSimilarityCompute(t *testing.T) {
	ctx := context.Background()

	ts, err := NewTextSimilarity(WithLogger(quietLogger(t)))
	if err != nil {
		t.Fatalf("failed to create text similarity: %v", err)
	}

	result := ts.Compute(ctx, "hello world", "hallo world")

	if result.Name != "text_similarity" {
		t.Errorf("expected name text_similarity, got %q", result.Name)
	}
	if math.Abs(result.Score-0.9091) > 1e-9 {
		t.Errorf("expected score 0.9091, got %v", result.Score)
	}
	if !result.Passed {
		t.Errorf("expected the pair to pass the default threshold, details: %v", result.Details)
	}
	if result.MatchingChars != 10 {
		t.Errorf("expected 10 matching chars, got %d", result.MatchingChars)
	}
	if result.LengthA != 11 || result.LengthB != 11 {
		t.Errorf("expected lengths 11 and 11, got %d and %d", result.LengthA, result.LengthB)
	}
}

func TestTextSimilarityOptions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		opts       []TextSimilarityOption
		a, b       string
		wantScore  float64
		wantPassed bool
	}{
		{
			name:       "strict threshold fails a near match",
			opts:       []TextSimilarityOption{WithThreshold(0.95)},
			a:          "hello world",
			b:          "hallo world",
			wantScore:  0.9091,
			wantPassed: false,
		},
		{
			name:       "low precision rounds the score",
			opts:       []TextSimilarityOption{WithPrecision(1)},
			a:          "hello world",
			b:          "hallo world",
			wantScore:  0.9,
			wantPassed: true,
		},
		{
			name:       "nfc normalizer equates composition forms",
			opts:       []TextSimilarityOption{WithNFCNormalizer()},
			a:          "Héllo",
			b:          "Héllo",
			wantScore:  1.0,
			wantPassed: true,
		},
		{
			name:       "case fold normalizer ignores case",
			opts:       []TextSimilarityOption{WithCaseFoldNormalizer()},
			a:          "HELLO WORLD",
			b:          "hello world",
			wantScore:  1.0,
			wantPassed: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]TextSimilarityOption{WithLogger(quietLogger(t))}, tc.opts...)
			ts, err := NewTextSimilarity(opts...)
			if err != nil {
				t.Fatalf("failed to create text similarity: %v", err)
			}

			result := ts.Compute(ctx, tc.a, tc.b)
			if math.Abs(result.Score-tc.wantScore) > 1e-9 {
				t.Errorf("expected score %v, got %v", tc.wantScore, result.Score)
			}
			if result.Passed != tc.wantPassed {
				t.Errorf("expected passed=%v, got %v, details: %v", tc.wantPassed, result.Passed, result.Details)
			}
		})
	}
}

func TestNewTextSimilarityRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  TextSimilarityOption
	}{
		{name: "threshold above one", opt: WithThreshold(1.5)},
		{name: "negative threshold", opt: WithThreshold(-0.1)},
		{name: "negative precision", opt: WithPrecision(-1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts, err := NewTextSimilarity(WithLogger(quietLogger(t)), tc.opt)
			if err == nil {
				t.Error("expected an error, got nil")
			}
			if ts != nil {
				t.Error("expected a nil instance on error")
			}
		})
	}
}
