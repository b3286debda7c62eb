package main

import (
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/l"
	"github.com/spf13/cobra"

	textcompare "github.com/baditaflorin/go_text_compare"
	"github.com/baditaflorin/go_text_compare/internal/adapters/normalizer"
	"github.com/baditaflorin/go_text_compare/internal/config"
)

var (
	cfgPath  string
	logFile  string
	jsonLogs bool
	quiet    bool

	cfg    config.Config
	cliLog l.Logger

	// Exit status follows diff: 0 identical, 1 differences, 2 trouble.
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "textcompare",
	Short: "Character-level text comparison",
	Long: `textcompare aligns two texts character by character, scores their
similarity and renders positional comparison reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg = config.Default()
		if cfgPath != "" {
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
		}
		cliLog, err = newCLILogger(logFile, jsonLogs)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "TOML config file path")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (default stderr)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress the status line, reply through the exit code")
}

func main() {
	err := rootCmd.Execute()
	if cliLog != nil {
		cliLog.Close()
	}
	if err != nil {
		exitCode = 2
	}
	os.Exit(exitCode)
}

// newCLILogger logs to stderr so reports on stdout stay clean.
func newCLILogger(path string, jsonFormat bool) (l.Logger, error) {
	var output io.Writer = os.Stderr
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	return l.NewStandardFactory().CreateLogger(l.Config{
		Output:     output,
		JsonFormat: jsonFormat,
		AsyncWrite: false,
		AddSource:  false,
	})
}

// buildEngine wires a comparison engine from the loaded config. Extra
// options run last, so command flags win over the config file.
func buildEngine(extra ...textcompare.Option) (*textcompare.Engine, error) {
	norm, err := normalizer.ByName(cfg.Engine.Normalizer)
	if err != nil {
		return nil, err
	}

	opts := []textcompare.Option{
		textcompare.WithLogger(cliLog),
		textcompare.WithThreshold(cfg.Engine.Threshold),
		textcompare.WithPrecision(cfg.Engine.Precision),
		textcompare.WithMaxReportChars(cfg.Engine.MaxReportChars),
		textcompare.WithExactSizeLimit(cfg.Engine.ExactSizeLimit),
		textcompare.WithFallbackTimeout(cfg.Engine.FallbackTimeout.Duration),
		textcompare.WithAutoJunk(cfg.Engine.AutoJunk),
		textcompare.WithNormalizer(norm),
	}
	opts = append(opts, extra...)

	return textcompare.New(opts...)
}
