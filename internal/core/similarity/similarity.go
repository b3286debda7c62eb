package similarity

import (
	"context"
	"errors"
	"math"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/ports"
)

const metricName = "text_similarity"

// Config holds configuration for the similarity calculator.
type Config struct {
	Threshold float64
	Precision int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.7,
		Precision: 4,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.New("threshold must be between 0 and 1")
	}
	if c.Precision < 0 {
		return errors.New("precision must not be negative")
	}
	return nil
}

// Calculator implements the similarity computation on top of an aligner.
type Calculator struct {
	config     Config
	aligner    ports.Aligner
	stats      ports.StatCounter
	logger     ports.Logger
	normalizer ports.Normalizer
}

// NewCalculator creates a new similarity calculator.
func NewCalculator(config Config, aligner ports.Aligner, stats ports.StatCounter, logger ports.Logger, normalizer ports.Normalizer) (*Calculator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Calculator{
		config:     config,
		aligner:    aligner,
		stats:      stats,
		logger:     logger,
		normalizer: normalizer,
	}, nil
}

// Compute calculates the similarity between two texts: the ratio
// 2*matching/(lenA+lenB) over the alignment, pass/fail against the
// threshold, per-text statistics, and their absolute deltas. Empty texts
// are valid input; an empty pair compares as identical.
func (c *Calculator) Compute(ctx context.Context, a, b string) domain.Result {
	details := make(map[string]interface{})

	a = c.normalizer.Normalize(a)
	b = c.normalizer.Normalize(b)

	c.logger.Debug("Starting similarity computation",
		"bytes_a", len(a),
		"bytes_b", len(b),
	)

	// Check context cancellation.
	select {
	case <-ctx.Done():
		c.logger.Error("Computation cancelled", "error", ctx.Err())
		details["error"] = "computation cancelled"
		return domain.Result{
			Name:    metricName,
			Score:   0,
			Passed:  false,
			Details: details,
		}
	default:
		// continue
	}

	ops := c.aligner.Align(ctx, a, b)

	return c.score(a, b, ops, details)
}

// ComputeFromOpcodes scores a pair whose alignment the caller already
// computed, so front ends that need both the opcodes and the score do
// not align twice. The texts and opcodes must belong together and be in
// the calculator's normalized form.
func (c *Calculator) ComputeFromOpcodes(ctx context.Context, a, b string, ops []domain.Opcode) domain.Result {
	details := make(map[string]interface{})

	select {
	case <-ctx.Done():
		c.logger.Error("Computation cancelled", "error", ctx.Err())
		details["error"] = "computation cancelled"
		return domain.Result{
			Name:    metricName,
			Score:   0,
			Passed:  false,
			Details: details,
		}
	default:
		// continue
	}

	return c.score(a, b, ops, details)
}

// score derives the result from an opcode partition. Lengths come from
// the opcode widths, which the alignment guarantees cover both texts.
func (c *Calculator) score(a, b string, ops []domain.Opcode, details map[string]interface{}) domain.Result {
	la, lb, matching := 0, 0, 0
	for _, op := range ops {
		la += op.ALen()
		lb += op.BLen()
		if op.Tag == domain.TagEqual {
			matching += op.ALen()
		}
	}

	// An empty pair is defined as identical.
	score := 1.0
	if la+lb > 0 {
		score = 2.0 * float64(matching) / float64(la+lb)
	}

	// Round the score to the configured precision.
	factor := math.Pow(10, float64(c.config.Precision))
	score = math.Round(score*factor) / factor

	statsA := c.stats.Count(a)
	statsB := c.stats.Count(b)
	delta := domain.Stats{
		Lines: absInt(statsA.Lines - statsB.Lines),
		Words: absInt(statsA.Words - statsB.Words),
		Chars: absInt(statsA.Chars - statsB.Chars),
	}

	passed := score >= c.config.Threshold

	details["matching_chars"] = matching
	details["length_a"] = la
	details["length_b"] = lb
	details["diff_count"] = diffCount(ops)
	details["threshold"] = c.config.Threshold

	c.logger.Debug("Computed similarity",
		"score", score,
		"passed", passed,
		"details", details,
	)

	return domain.Result{
		Name:          metricName,
		Score:         score,
		Passed:        passed,
		MatchingChars: matching,
		LengthA:       la,
		LengthB:       lb,
		Threshold:     c.config.Threshold,
		StatsA:        statsA,
		StatsB:        statsB,
		Delta:         delta,
		Details:       details,
	}
}

// diffCount counts the non-equal opcodes of a partition.
func diffCount(ops []domain.Opcode) int {
	n := 0
	for _, op := range ops {
		if op.Tag != domain.TagEqual {
			n++
		}
	}
	return n
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
