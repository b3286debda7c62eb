package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	textcompare "github.com/baditaflorin/go_text_compare"
	"github.com/baditaflorin/go_text_compare/internal/pool"
)

var (
	compareOutput   string
	compareReport   bool
	compareJSON     bool
	compareMaxChars int
)

// copyBufPool feeds io.CopyBuffer when writing reports to files.
var copyBufPool = pool.NewBufferPool(32 * 1024)

var compareCmd = &cobra.Command{
	Use:   "compare <file-a> <file-b>",
	Short: "Compare two text files character by character",
	Long: `Compare aligns two files character by character and prints how
similar they are. Exit status follows diff: 0 when the files are
identical, 1 when differences were found, 2 on trouble.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

// compareResult is the machine-readable shape behind --json.
type compareResult struct {
	Score         float64      `json:"score"`
	Passed        bool         `json:"passed"`
	MatchingChars int          `json:"matching_chars"`
	LengthA       int          `json:"length_a"`
	LengthB       int          `json:"length_b"`
	DiffCount     int          `json:"diff_count"`
	Threshold     float64      `json:"threshold"`
	StatsA        statsResult  `json:"stats_a"`
	StatsB        statsResult  `json:"stats_b"`
	Delta         statsResult  `json:"delta"`
	Status        string       `json:"status"`
	Report        string       `json:"report,omitempty"`
}

type statsResult struct {
	Lines int `json:"lines"`
	Words int `json:"words"`
	Chars int `json:"chars"`
}

func init() {
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", `write the full report to a file ("-" = stdout, .gz gzips)`)
	compareCmd.Flags().BoolVar(&compareReport, "report", false, "print the full character report instead of the summary line")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "print the comparison as JSON")
	compareCmd.Flags().IntVar(&compareMaxChars, "max-chars", 0, "cap on report positions (default from config)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	textA, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	textB, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	var extra []textcompare.Option
	if compareMaxChars > 0 {
		extra = append(extra, textcompare.WithMaxReportChars(compareMaxChars))
	}
	eng, err := buildEngine(extra...)
	if err != nil {
		return err
	}

	comp, rep := eng.CompareAndReport(cmd.Context(), string(textA), string(textB))

	if compareOutput != "" {
		if err := writeReport(compareOutput, rep.Text); err != nil {
			return err
		}
	}

	switch {
	case compareJSON:
		result := compareResult{
			Score:         comp.Result.Score,
			Passed:        comp.Result.Passed,
			MatchingChars: comp.Result.MatchingChars,
			LengthA:       comp.Result.LengthA,
			LengthB:       comp.Result.LengthB,
			DiffCount:     comp.DiffCount,
			Threshold:     comp.Result.Threshold,
			StatsA:        statsResult(comp.Result.StatsA),
			StatsB:        statsResult(comp.Result.StatsB),
			Delta:         statsResult(comp.Result.Delta),
			Status:        eng.StatusLine(comp),
		}
		if compareReport {
			result.Report = rep.Text
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case compareReport:
		fmt.Print(rep.Text)
	case !quiet:
		fmt.Println(eng.StatusLine(comp))
	}

	if comp.DiffCount > 0 {
		exitCode = 1
	}
	return nil
}

// writeReport writes the report text to the destination, gzipping when
// the path ends in .gz.
func writeReport(path, text string) error {
	if path == "-" {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	buf := copyBufPool.Get()
	_, err = io.CopyBuffer(w, strings.NewReader(text), (*buf)[:cap(*buf)])
	copyBufPool.Put(buf)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return f.Close()
}
