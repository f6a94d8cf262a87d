package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seoforge/seoforge/internal/publish"
)

var publishStatus string

var publishCmd = &cobra.Command{
	Use:   "publish <run-id>",
	Short: "Publish a stored run to WordPress",
	Long: `Push a previously generated article to the configured WordPress site.
Posts are created as drafts unless --status publish is given.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		content, err := store.GetContent(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		wpCfg := cfg.WordPress
		if publishStatus != "" {
			wpCfg.Status = publishStatus
		}
		client, err := publish.NewWordPress(wpCfg, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		result, err := client.Publish(context.Background(), content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: publish failed: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s Published %q as post %d\n  %s\n\n", green("✓"), content.Title, result.ID, result.Link)
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishStatus, "status", "", "post status: draft or publish (overrides config)")
}
