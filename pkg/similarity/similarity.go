package similarity

import (
	"context"

	"github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/adapters/normalizer"
	"github.com/baditaflorin/go_text_compare/internal/core/align"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/core/similarity"
	"github.com/baditaflorin/go_text_compare/internal/core/textstat"
	"github.com/baditaflorin/go_text_compare/internal/ports"
	"github.com/baditaflorin/go_text_compare/internal/warmup"
	"github.com/baditaflorin/l"
)

// TextSimilarity provides methods to compute the character-level
// similarity score of a text pair.
type TextSimilarity struct {
	calculator ports.SimilarityCalculator
	logger     ports.Logger
	normalizer ports.Normalizer
	warmed     bool
}

// TextSimilarityOption defines a functional option for configuring
// TextSimilarity.
type TextSimilarityOption func(*textSimilarityConfig)

type textSimilarityConfig struct {
	Threshold    float64
	Precision    int
	Logger       ports.Logger
	Normalizer   ports.Normalizer
	WarmUp       bool
	WarmUpConfig warmup.WarmupConfig
}

// WithThreshold sets a custom threshold for text similarity.
func WithThreshold(th float64) TextSimilarityOption {
	return func(cfg *textSimilarityConfig) {
		cfg.Threshold = th
	}
}

// WithPrecision sets a custom precision for rounding computed scores.
func WithPrecision(p int) TextSimilarityOption {
	return func(cfg *textSimilarityConfig) {
		cfg.Precision = p
	}
}

// WithLogger sets a custom logger for text similarity.
func WithLogger(l l.Logger) TextSimilarityOption {
	return func(cfg *textSimilarityConfig) {
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithNormalizer sets a custom normalizer for text similarity.
func WithNormalizer(n ports.Normalizer) TextSimilarityOption {
	return func(cfg *textSimilarityConfig) {
		cfg.Normalizer = n
	}
}

// WithNFCNormalizer composes canonically equivalent sequences before
// comparing.
func WithNFCNormalizer() TextSimilarityOption {
	return func(cfg *textSimilarityConfig) {
		cfg.Normalizer = normalizer.NewNFCNormalizer()
	}
}

// WithCaseFoldNormalizer makes comparisons case-insensitive through
// Unicode case folding.
func WithCaseFoldNormalizer() TextSimilarityOption {
	return func(cfg *textSimilarityConfig) {
		cfg.Normalizer = normalizer.NewCaseFoldNormalizer()
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) TextSimilarityOption {
	return func(cfg *textSimilarityConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) TextSimilarityOption {
	return func(cfg *textSimilarityConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// NewTextSimilarity creates a new TextSimilarity instance.
func NewTextSimilarity(opts ...TextSimilarityOption) (*TextSimilarity, error) {
	// Default configuration
	defaultConfig := similarity.DefaultConfig()

	config := &textSimilarityConfig{
		Threshold:    defaultConfig.Threshold,
		Precision:    defaultConfig.Precision,
		WarmUp:       false,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	// Set up logger if not provided
	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	// Set up normalizer if not provided
	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewIdentityNormalizer()
	}

	// Create the aligner the calculator scores over
	aligner, err := align.NewAligner(align.DefaultConfig(), config.Logger, config.Normalizer)
	if err != nil {
		return nil, err
	}

	counter := textstat.NewCounter(config.Logger)

	// Create core calculator
	coreConfig := similarity.Config{
		Threshold: config.Threshold,
		Precision: config.Precision,
	}
	calculator, err := similarity.NewCalculator(coreConfig, aligner, counter, config.Logger, config.Normalizer)
	if err != nil {
		return nil, err
	}

	ts := &TextSimilarity{
		calculator: calculator,
		logger:     config.Logger,
		normalizer: config.Normalizer,
		warmed:     false,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		ts.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return ts, nil
}

// Compute calculates the character-level similarity between two texts.
func (ts *TextSimilarity) Compute(ctx context.Context, a, b string) domain.Result {
	return ts.calculator.Compute(ctx, a, b)
}

// WarmUp performs system warm-up to optimize performance.
func (ts *TextSimilarity) WarmUp(ctx context.Context, config warmup.WarmupConfig) {
	if ts.warmed {
		ts.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(ts.logger, config)
	warmupMgr.RegisterCalculator(ts.calculator)
	warmupMgr.RegisterNormalizer(ts.normalizer)

	warmupMgr.WarmUp(ctx)
	ts.warmed = true
}
