package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seoforge/seoforge/internal/storage/sqlite"
	"github.com/seoforge/seoforge/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored generation runs",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		runs, err := store.ListContent(context.Background(), historyLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(runs) == 0 {
			fmt.Println("No stored runs.")
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, run := range runs {
			outcome := green(string(run.Optimization))
			if run.Optimization != types.OptimizationPassed {
				outcome = yellow(string(run.Optimization))
			}
			fmt.Printf("%s  %-30q  %5d words  score %3.0f  %s  %s\n",
				run.GeneratedAt.Local().Format("2006-01-02 15:04"),
				run.Keyword, run.WordCount, run.CoverageScore, outcome, gray(run.ID))
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the stored HTML for a run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		content, err := store.GetContent(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(content.HTML)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to list")
}

func openStore() *sqlite.Store {
	if cfg.DatabasePath == "" {
		fmt.Fprintln(os.Stderr, "Error: no database path configured")
		os.Exit(1)
	}
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open run database: %v\n", err)
		os.Exit(1)
	}
	return store
}
