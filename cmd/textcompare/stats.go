package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [file ...]",
	Short: "Count lines, words and characters",
	Long: `Stats streams each file and prints its line, word and character
counts. Reads stdin when no files are given. Whitespace-only input
counts as zero lines and zero words.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		stats, _, err := eng.StatsReader(cmd.Context(), os.Stdin)
		if err != nil {
			return err
		}
		fmt.Printf("%8d %8d %8d\n", stats.Lines, stats.Words, stats.Chars)
		return nil
	}

	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		stats, _, err := eng.StatsReader(cmd.Context(), f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%8d %8d %8d %s\n", stats.Lines, stats.Words, stats.Chars, path)
	}
	return nil
}
