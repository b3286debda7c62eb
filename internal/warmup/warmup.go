package warmup

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/ports"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Sample text size for warmup
	SampleTextSize int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency:    runtime.NumCPU(),
		Iterations:     1000,
		SampleTextSize: 1000,
		Duration:       5 * time.Second,
		ForceGC:        true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	aligners    []ports.Aligner
	calculators []ports.SimilarityCalculator
	reporters   []ports.Reporter
	normalizers []ports.Normalizer
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterAligner adds an aligner to be warmed up
func (wm *Manager) RegisterAligner(aligner ports.Aligner) {
	wm.aligners = append(wm.aligners, aligner)
}

// RegisterCalculator adds a calculator to be warmed up
func (wm *Manager) RegisterCalculator(calc ports.SimilarityCalculator) {
	wm.calculators = append(wm.calculators, calc)
}

// RegisterReporter adds a reporter to be warmed up
func (wm *Manager) RegisterReporter(rep ports.Reporter) {
	wm.reporters = append(wm.reporters, rep)
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// WarmUp runs the warmup process for all registered components
func (wm *Manager) WarmUp(ctx context.Context) {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.aligners)+len(wm.calculators)+len(wm.reporters)+len(wm.normalizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	// Create a context with timeout if duration is specified
	var warmupCtx context.Context
	var cancel context.CancelFunc
	if wm.config.Duration > 0 {
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	} else {
		warmupCtx = ctx
	}

	// Warm up normalizers
	wm.warmUpNormalizers(warmupCtx)

	// Warm up aligners
	wm.warmUpAligners(warmupCtx)

	// Warm up calculators
	wm.warmUpCalculators(warmupCtx)

	// Warm up reporters
	wm.warmUpReporters(warmupCtx)

	// Force garbage collection if configured
	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

// warmUpNormalizers runs warmup for all registered normalizers
func (wm *Manager) warmUpNormalizers(ctx context.Context) {
	if len(wm.normalizers) == 0 {
		return
	}

	wm.logger.Debug("Warming up normalizers", "count", len(wm.normalizers))

	// Generate sample text
	sampleText := generateSampleText(wm.config.SampleTextSize)

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func(routineID int) {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				// Check for context cancellation
				select {
				case <-ctx.Done():
					return
				default:
					// Continue
				}

				// Normalize sample text with each normalizer
				for _, normalizer := range wm.normalizers {
					_ = normalizer.Normalize(sampleText)
				}
			}
		}(i)
	}

	wg.Wait()
}

// warmUpAligners runs warmup for all registered aligners
func (wm *Manager) warmUpAligners(ctx context.Context) {
	if len(wm.aligners) == 0 {
		return
	}

	wm.logger.Debug("Warming up aligners", "count", len(wm.aligners))

	// Generate sample texts of different similarity levels
	original := generateSampleText(wm.config.SampleTextSize)
	similar := generateSimilarText(original, 0.1)   // 10% difference
	different := generateSimilarText(original, 0.5) // 50% difference

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func(routineID int) {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				// Check for context cancellation
				select {
				case <-ctx.Done():
					return
				default:
					// Continue
				}

				// Run alignment with each aligner
				for _, aligner := range wm.aligners {
					// Alternate between different similarity levels
					if j%3 == 0 {
						_ = aligner.Align(ctx, original, original) // Identical
					} else if j%3 == 1 {
						_ = aligner.Align(ctx, original, similar) // Similar
					} else {
						_ = aligner.Align(ctx, original, different) // Different
					}
				}
			}
		}(i)
	}

	wg.Wait()
}

// warmUpCalculators runs warmup for all registered calculators
func (wm *Manager) warmUpCalculators(ctx context.Context) {
	if len(wm.calculators) == 0 {
		return
	}

	wm.logger.Debug("Warming up calculators", "count", len(wm.calculators))

	// Generate sample texts of different similarity levels
	original := generateSampleText(wm.config.SampleTextSize)
	similar := generateSimilarText(original, 0.1)   // 10% difference
	different := generateSimilarText(original, 0.5) // 50% difference

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func(routineID int) {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				// Check for context cancellation
				select {
				case <-ctx.Done():
					return
				default:
					// Continue
				}

				// Run similarity calculation with each calculator
				for _, calculator := range wm.calculators {
					// Alternate between different similarity levels
					if j%3 == 0 {
						_ = calculator.Compute(ctx, original, original) // Identical
					} else if j%3 == 1 {
						_ = calculator.Compute(ctx, original, similar) // Similar
					} else {
						_ = calculator.Compute(ctx, original, different) // Different
					}
				}
			}
		}(i)
	}

	wg.Wait()
}

// warmUpReporters runs warmup for all registered reporters
func (wm *Manager) warmUpReporters(ctx context.Context) {
	if len(wm.reporters) == 0 {
		return
	}

	wm.logger.Debug("Warming up reporters", "count", len(wm.reporters))

	// Generate sample texts and a synthetic partition over them
	original := generateSampleText(wm.config.SampleTextSize)
	similar := generateSimilarText(original, 0.1)
	opcodes := syntheticOpcodes(original, similar)

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func(routineID int) {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations/10; j++ { // Rendering is heavier, fewer iterations
				// Check for context cancellation
				select {
				case <-ctx.Done():
					return
				default:
					// Continue
				}

				// Render reports with each reporter
				for _, reporter := range wm.reporters {
					_ = reporter.Report(original, similar, opcodes)
				}
			}
		}(i)
	}

	wg.Wait()
}

// Helper functions for generating test data

// generateSampleText creates sample text of the specified size
func generateSampleText(size int) string {
	// Sample words to use in generating text
	words := []string{
		"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
		"hello", "world", "lorem", "ipsum", "dolor", "sit", "amet", "consectetur",
		"adipiscing", "elit", "sed", "do", "eiusmod", "tempor", "incididunt",
		"ut", "labore", "et", "dolore", "magna", "aliqua",
	}

	var sb strings.Builder
	wordsNeeded := size / 5 // Assuming average word length of 5

	for i := 0; i < wordsNeeded; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		wordIndex := i % len(words)
		sb.WriteString(words[wordIndex])
	}

	result := sb.String()
	if len(result) > size {
		return result[:size]
	}
	return result
}

// generateSimilarText creates a text similar to the original with the
// specified fraction of characters replaced
func generateSimilarText(original string, diffRatio float64) string {
	runes := []rune(original)
	if len(runes) == 0 || diffRatio <= 0 {
		return original
	}

	// Replace every step-th character with a letter it cannot equal
	step := int(1.0 / diffRatio)
	if step < 1 {
		step = 1
	}

	replacements := []rune("zyxwvutsrq")
	for i := 0; i < len(runes); i += step {
		repl := replacements[(i/step)%len(replacements)]
		if runes[i] == repl {
			repl = '#'
		}
		runes[i] = repl
	}

	return string(runes)
}

// syntheticOpcodes builds a small valid partition over a sample pair, so
// reporter warmup does not depend on a registered aligner
func syntheticOpcodes(a, b string) []domain.Opcode {
	la := len([]rune(a))
	lb := len([]rune(b))
	switch {
	case la == 0 && lb == 0:
		return nil
	case la == 0:
		return []domain.Opcode{{Tag: domain.TagInsert, AStart: 0, AEnd: 0, BStart: 0, BEnd: lb}}
	case lb == 0:
		return []domain.Opcode{{Tag: domain.TagDelete, AStart: 0, AEnd: la, BStart: 0, BEnd: 0}}
	}

	half := min(la, lb) / 2
	if half == 0 {
		return []domain.Opcode{{Tag: domain.TagReplace, AStart: 0, AEnd: la, BStart: 0, BEnd: lb}}
	}

	return []domain.Opcode{
		{Tag: domain.TagEqual, AStart: 0, AEnd: half, BStart: 0, BEnd: half},
		{Tag: domain.TagReplace, AStart: half, AEnd: la, BStart: half, BEnd: lb},
	}
}
