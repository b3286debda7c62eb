package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/adapters/normalizer"
	"github.com/baditaflorin/go_text_compare/internal/core/align"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/core/textstat"
	"github.com/baditaflorin/go_text_compare/internal/ports"
)

func newTestCalculator(t *testing.T, config Config, norm ports.Normalizer) *Calculator {
	t.Helper()
	nop := logger.NewNopLogger()
	if norm == nil {
		norm = normalizer.NewIdentityNormalizer()
	}
	aligner, err := align.NewAligner(align.DefaultConfig(), nop, norm)
	if err != nil {
		t.Fatalf("failed to create aligner: %v", err)
	}
	calc, err := NewCalculator(config, aligner, textstat.NewCounter(nop), nop, norm)
	if err != nil {
		t.Fatalf("failed to create calculator: %v", err)
	}
	return calc
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeWithDefaults(t *testing.T) {
	tests := []struct {
		name      string
		a         string
		b         string
		wantScore float64
		wantPass  bool
	}{
		{
			name:      "identical texts",
			a:         "The quick brown fox jumps over the lazy dog.",
			b:         "The quick brown fox jumps over the lazy dog.",
			wantScore: 1.0,
			wantPass:  true,
		},
		{
			name:      "one substitution",
			a:         "hello world",
			b:         "hallo world",
			wantScore: 0.9091,
			wantPass:  true,
		},
		{
			name:      "disjoint texts",
			a:         "abc",
			b:         "xyz",
			wantScore: 0.0,
			wantPass:  false,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			// An empty pair compares as identical.
			wantScore: 1.0,
			wantPass:  true,
		},
		{
			name:      "one empty",
			a:         "",
			b:         "some text",
			wantScore: 0.0,
			wantPass:  false,
		},
	}

	ctx := context.Background()
	calc := newTestCalculator(t, DefaultConfig(), nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := calc.Compute(ctx, tc.a, tc.b)
			if !almostEqual(result.Score, tc.wantScore) {
				t.Errorf("expected score %v, got %v, details: %v", tc.wantScore, result.Score, result.Details)
			}
			if result.Passed != tc.wantPass {
				t.Errorf("expected passed=%v, got %v, details: %v", tc.wantPass, result.Passed, result.Details)
			}
		})
	}
}

func TestComputeFields(t *testing.T) {
	ctx := context.Background()
	calc := newTestCalculator(t, DefaultConfig(), nil)

	result := calc.Compute(ctx, "hello world", "hallo world")

	if result.Name != "text_similarity" {
		t.Errorf("expected metric name text_similarity, got %q", result.Name)
	}
	if result.MatchingChars != 10 {
		t.Errorf("expected 10 matching chars, got %d", result.MatchingChars)
	}
	if result.LengthA != 11 || result.LengthB != 11 {
		t.Errorf("expected lengths 11 and 11, got %d and %d", result.LengthA, result.LengthB)
	}
	if !almostEqual(result.Threshold, 0.7) {
		t.Errorf("expected threshold 0.7, got %v", result.Threshold)
	}
	if got := result.Details["diff_count"]; got != 1 {
		t.Errorf("expected diff_count detail 1, got %v", got)
	}
	if got := result.Details["matching_chars"]; got != 10 {
		t.Errorf("expected matching_chars detail 10, got %v", got)
	}
}

func TestComputeStats(t *testing.T) {
	ctx := context.Background()
	calc := newTestCalculator(t, DefaultConfig(), nil)

	result := calc.Compute(ctx, "one two\nthree\n", "one two\n")

	wantA := domain.Stats{Lines: 2, Words: 3, Chars: 14}
	if result.StatsA != wantA {
		t.Errorf("expected stats %+v for first text, got %+v", wantA, result.StatsA)
	}
	wantB := domain.Stats{Lines: 1, Words: 2, Chars: 8}
	if result.StatsB != wantB {
		t.Errorf("expected stats %+v for second text, got %+v", wantB, result.StatsB)
	}
	wantDelta := domain.Stats{Lines: 1, Words: 1, Chars: 6}
	if result.Delta != wantDelta {
		t.Errorf("expected delta %+v, got %+v", wantDelta, result.Delta)
	}
}

func TestComputePrecision(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		wantScore float64
	}{
		{"four digits", 4, 0.9091},
		{"two digits", 2, 0.91},
		{"one digit", 1, 0.9},
	}

	ctx := context.Background()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Precision = tc.precision
			calc := newTestCalculator(t, config, nil)

			result := calc.Compute(ctx, "hello world", "hallo world")
			if !almostEqual(result.Score, tc.wantScore) {
				t.Errorf("expected score %v, got %v", tc.wantScore, result.Score)
			}
		})
	}
}

func TestComputeThreshold(t *testing.T) {
	ctx := context.Background()

	config := DefaultConfig()
	config.Threshold = 0.95
	strict := newTestCalculator(t, config, nil)
	if result := strict.Compute(ctx, "hello world", "hallo world"); result.Passed {
		t.Errorf("expected score %v to fail threshold %v", result.Score, config.Threshold)
	}

	config.Threshold = 0.9
	loose := newTestCalculator(t, config, nil)
	if result := loose.Compute(ctx, "hello world", "hallo world"); !result.Passed {
		t.Errorf("expected score %v to pass threshold %v", result.Score, config.Threshold)
	}
}

func TestComputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calc := newTestCalculator(t, DefaultConfig(), nil)
	result := calc.Compute(ctx, "hello", "world")

	if result.Score != 0 || result.Passed {
		t.Errorf("expected zero failing score after cancellation, got %+v", result)
	}
	if got := result.Details["error"]; got != "computation cancelled" {
		t.Errorf("expected cancellation detail, got %v", got)
	}
}

// Scoring a precomputed alignment must agree with the all-in-one path.
func TestComputeFromOpcodes(t *testing.T) {
	ctx := context.Background()
	nop := logger.NewNopLogger()
	norm := normalizer.NewIdentityNormalizer()
	aligner, err := align.NewAligner(align.DefaultConfig(), nop, norm)
	if err != nil {
		t.Fatalf("failed to create aligner: %v", err)
	}
	calc := newTestCalculator(t, DefaultConfig(), nil)

	a, b := "the quick brown fox", "the quack brown fax"
	ops := aligner.Align(ctx, a, b)

	direct := calc.Compute(ctx, a, b)
	fromOps := calc.ComputeFromOpcodes(ctx, a, b, ops)

	if !almostEqual(direct.Score, fromOps.Score) {
		t.Errorf("expected score %v, got %v", direct.Score, fromOps.Score)
	}
	if direct.MatchingChars != fromOps.MatchingChars {
		t.Errorf("expected %d matching chars, got %d", direct.MatchingChars, fromOps.MatchingChars)
	}
	if direct.StatsA != fromOps.StatsA || direct.StatsB != fromOps.StatsB {
		t.Errorf("expected identical stats, got %+v and %+v", fromOps.StatsA, fromOps.StatsB)
	}
}

func TestComputeWithNFCNormalizer(t *testing.T) {
	ctx := context.Background()
	calc := newTestCalculator(t, DefaultConfig(), normalizer.NewNFCNormalizer())

	// Composed and decomposed spellings of the same word.
	result := calc.Compute(ctx, "Héllo", "Héllo")

	if !almostEqual(result.Score, 1.0) {
		t.Errorf("expected score 1.0, got %v", result.Score)
	}
	// Lengths are reported in the normalized frame.
	if result.LengthA != 5 || result.LengthB != 5 {
		t.Errorf("expected lengths 5 and 5, got %d and %d", result.LengthA, result.LengthB)
	}
}

func TestNewCalculatorValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"threshold above one", Config{Threshold: 1.5, Precision: 4}, true},
		{"negative threshold", Config{Threshold: -0.1, Precision: 4}, true},
		{"negative precision", Config{Threshold: 0.7, Precision: -1}, true},
		{"zero threshold", Config{Threshold: 0, Precision: 4}, false},
	}

	nop := logger.NewNopLogger()
	norm := normalizer.NewIdentityNormalizer()
	aligner, err := align.NewAligner(align.DefaultConfig(), nop, norm)
	if err != nil {
		t.Fatalf("failed to create aligner: %v", err)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCalculator(tc.config, aligner, textstat.NewCounter(nop), nop, norm)
			if (err != nil) != tc.wantErr {
				t.Errorf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
