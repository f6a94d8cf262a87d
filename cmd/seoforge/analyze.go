package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <keyword>...",
	Short: "Run SERP analysis for one or more keywords",
	Long: `Analyze the search landscape for keywords without generating content.
Useful for planning: recommended length, intent, and suggested headings.

Example:
  seoforge analyze "keto diet" "intermittent fasting" "macro counting"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.SerperAPIKey == "" {
			fmt.Fprintln(os.Stderr, "Error: SERP analysis requires a Serper API key (set SERPER_API_KEY)")
			os.Exit(1)
		}

		engine, store, err := buildEngine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if store != nil {
			defer store.Close()
		}

		results := engine.AnalyzeKeywords(context.Background(), args, country())

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, r := range results {
			fmt.Printf("\n%s\n", cyan(r.Keyword))
			if r.Err != nil {
				fmt.Printf("  %s %v\n", red("✗"), r.Err)
				continue
			}
			fmt.Printf("  Recommended length: %d words\n", r.SERP.RecommendedWordCount)
			fmt.Printf("  Intent:             %s\n", r.SERP.Intent)
			if len(r.SERP.HeadingSuggestions) > 0 {
				fmt.Printf("  Headings:           %s\n", strings.Join(r.SERP.HeadingSuggestions, "; "))
			}
			if len(r.SERP.ContentGaps) > 0 {
				fmt.Printf("  %s %s\n", gray("Gaps:"), gray(strings.Join(r.SERP.ContentGaps, "; ")))
			}
		}
		fmt.Println()
	},
}
