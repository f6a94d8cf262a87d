// seoforge generates long-form SEO articles: SERP research, drafting with a
// completion loop, term-coverage optimization against an external scorer, and
// optional publishing to WordPress.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seoforge/seoforge/internal/config"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "seoforge",
	Short: "SEO content generation engine",
	Long: `seoforge researches a keyword, drafts a long-form article, optimizes it
against a term-coverage scorer, and produces publish-ready HTML with metadata,
references, and structured data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "seoforge.yaml", "path to config file")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(publishCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
