package warmup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

type countingAligner struct {
	calls atomic.Int64
}

func (c *countingAligner) Align(ctx context.Context, a, b string) []domain.Opcode {
	c.calls.Add(1)
	return syntheticOpcodes(a, b)
}

func (c *countingAligner) MatchingBlocks(ctx context.Context, a, b string) []domain.MatchingBlock {
	return nil
}

type countingCalculator struct {
	calls atomic.Int64
}

func (c *countingCalculator) Compute(ctx context.Context, a, b string) domain.Result {
	c.calls.Add(1)
	return domain.Result{Name: "text_similarity"}
}

type countingReporter struct {
	calls atomic.Int64
}

func (c *countingReporter) Report(a, b string, opcodes []domain.Opcode) domain.Report {
	c.calls.Add(1)
	return domain.Report{}
}

type countingNormalizer struct {
	calls atomic.Int64
}

func (c *countingNormalizer) Normalize(text string) string {
	c.calls.Add(1)
	return text
}

func TestWarmUpExercisesRegisteredComponents(t *testing.T) {
	config := WarmupConfig{
		Concurrency:    2,
		Iterations:     20,
		SampleTextSize: 100,
		Duration:       5 * time.Second,
		ForceGC:        false,
	}

	aligner := &countingAligner{}
	calculator := &countingCalculator{}
	reporter := &countingReporter{}
	normalizer := &countingNormalizer{}

	mgr := NewManager(logger.NewNopLogger(), config)
	mgr.RegisterAligner(aligner)
	mgr.RegisterCalculator(calculator)
	mgr.RegisterReporter(reporter)
	mgr.RegisterNormalizer(normalizer)

	mgr.WarmUp(context.Background())

	if got := aligner.calls.Load(); got == 0 {
		t.Error("expected the aligner to be exercised, got 0 calls")
	}
	if got := calculator.calls.Load(); got == 0 {
		t.Error("expected the calculator to be exercised, got 0 calls")
	}
	if got := reporter.calls.Load(); got == 0 {
		t.Error("expected the reporter to be exercised, got 0 calls")
	}
	if got := normalizer.calls.Load(); got == 0 {
		t.Error("expected the normalizer to be exercised, got 0 calls")
	}
}

func TestWarmUpWithNoComponents(t *testing.T) {
	mgr := NewManager(logger.NewNopLogger(), DefaultWarmupConfig())

	// Must return promptly and not panic with nothing registered.
	done := make(chan struct{})
	go func() {
		mgr.WarmUp(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("warmup with no components did not return")
	}
}

func TestWarmUpHonorsCancellation(t *testing.T) {
	config := WarmupConfig{
		Concurrency:    2,
		Iterations:     1 << 30,
		SampleTextSize: 100,
		Duration:       0,
		ForceGC:        false,
	}

	normalizer := &countingNormalizer{}
	mgr := NewManager(logger.NewNopLogger(), config)
	mgr.RegisterNormalizer(normalizer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		mgr.WarmUp(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("warmup did not stop on a cancelled context")
	}
}

func TestSyntheticOpcodesPartition(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{name: "both empty", a: "", b: ""},
		{name: "first empty", a: "", b: "xy"},
		{name: "second empty", a: "abc", b: ""},
		{name: "short pair", a: "ab", b: "x"},
		{name: "uneven pair", a: "abcdef", b: "abcd"},
		{name: "equal lengths", a: "abcdefgh", b: "abcdzzzz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ops := syntheticOpcodes(tc.a, tc.b)

			la := len([]rune(tc.a))
			lb := len([]rune(tc.b))
			posA, posB := 0, 0
			for i, op := range ops {
				if op.AStart != posA || op.BStart != posB {
					t.Fatalf("opcode %d starts at (%d,%d), expected (%d,%d)", i, op.AStart, op.BStart, posA, posB)
				}
				switch op.Tag {
				case domain.TagEqual:
					if op.ALen() != op.BLen() || op.ALen() <= 0 {
						t.Fatalf("opcode %d: malformed equal %+v", i, op)
					}
				case domain.TagInsert:
					if op.ALen() != 0 || op.BLen() <= 0 {
						t.Fatalf("opcode %d: malformed insert %+v", i, op)
					}
				case domain.TagDelete:
					if op.ALen() <= 0 || op.BLen() != 0 {
						t.Fatalf("opcode %d: malformed delete %+v", i, op)
					}
				case domain.TagReplace:
					if op.ALen() <= 0 || op.BLen() <= 0 {
						t.Fatalf("opcode %d: malformed replace %+v", i, op)
					}
				default:
					t.Fatalf("opcode %d: unknown tag %v", i, op.Tag)
				}
				posA, posB = op.AEnd, op.BEnd
			}
			if posA != la || posB != lb {
				t.Errorf("partition ends at (%d,%d), expected (%d,%d)", posA, posB, la, lb)
			}
		})
	}
}

func TestGenerateSampleText(t *testing.T) {
	for _, size := range []int{10, 100, 1000} {
		text := generateSampleText(size)
		if len(text) == 0 {
			t.Errorf("size %d: expected non-empty sample text", size)
		}
		if len(text) > size {
			t.Errorf("size %d: sample text has %d bytes", size, len(text))
		}
	}
}

func TestGenerateSimilarText(t *testing.T) {
	original := generateSampleText(500)

	if got := generateSimilarText(original, 0); got != original {
		t.Error("expected a zero diff ratio to return the original text")
	}

	similar := generateSimilarText(original, 0.1)
	or := []rune(original)
	sr := []rune(similar)
	if len(or) != len(sr) {
		t.Fatalf("expected equal rune counts, got %d and %d", len(or), len(sr))
	}

	changed := 0
	for i := range or {
		if or[i] != sr[i] {
			changed++
		}
	}
	if changed == 0 {
		t.Error("expected the similar text to differ from the original")
	}
	if changed > len(or)/5 {
		t.Errorf("expected roughly 10%% of runes changed, got %d of %d", changed, len(or))
	}
}
