package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seoforge/seoforge/internal/ai"
	"github.com/seoforge/seoforge/internal/events"
	"github.com/seoforge/seoforge/internal/pipeline"
	"github.com/seoforge/seoforge/internal/research"
	"github.com/seoforge/seoforge/internal/scorer"
	"github.com/seoforge/seoforge/internal/storage/sqlite"
	"github.com/seoforge/seoforge/internal/types"
)

var (
	generateWords      int
	generateTitle      string
	generateType       string
	generateCountry    string
	generateOutput     string
	generateVideos     bool
	generateReferences bool
	generateLinks      bool
	generateNoSave     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <keyword>",
	Short: "Generate an article for a keyword",
	Long: `Run the full pipeline for one keyword: research, title, draft,
completion, link enhancement, coverage optimization, and finalization.

Example:
  seoforge generate "intermittent fasting" --words 2500 --references --links
  seoforge generate "standing desk" --type product_review -o article.html`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

		req := &types.GenerationRequest{
			Keyword:           args[0],
			Title:             generateTitle,
			TargetWordCount:   generateWords,
			ContentType:       types.ContentType(generateType),
			Country:           country(),
			ProjectID:         cfg.ScorerProjectID,
			IncludeVideos:     generateVideos,
			IncludeReferences: generateReferences,
			IncludeLinks:      generateLinks,
		}

		content, err := engine.GenerateContent(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: generation failed: %v\n", err)
			os.Exit(1)
		}

		printSummary(content)

		if generateOutput != "" {
			if err := os.WriteFile(generateOutput, []byte(content.HTML), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", generateOutput, err)
				os.Exit(1)
			}
			fmt.Printf("  Saved HTML to %s\n\n", generateOutput)
		}
	},
}

func init() {
	generateCmd.Flags().IntVar(&generateWords, "words", 0, "target word count (0 = research-derived)")
	generateCmd.Flags().StringVar(&generateTitle, "title", "", "use this title instead of generating one")
	generateCmd.Flags().StringVar(&generateType, "type", "", "content type: blog_post, how_to, listicle, product_review, guide")
	generateCmd.Flags().StringVar(&generateCountry, "country", "", "SERP locale (overrides config)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "write final HTML to this file")
	generateCmd.Flags().BoolVar(&generateVideos, "videos", false, "embed a relevant video")
	generateCmd.Flags().BoolVar(&generateReferences, "references", false, "append a ranked reference list")
	generateCmd.Flags().BoolVar(&generateLinks, "links", false, "inject inline reference links")
	generateCmd.Flags().BoolVar(&generateNoSave, "no-save", false, "skip persisting the run")
}

func country() string {
	if generateCountry != "" {
		return generateCountry
	}
	return cfg.Country
}

// buildEngine wires the pipeline from config: every optional collaborator is
// attached only when its credentials exist.
func buildEngine() (*pipeline.Engine, *sqlite.Store, error) {
	generator, err := ai.NewGenerator(&ai.Config{APIKey: cfg.AnthropicAPIKey})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create generator: %w", err)
	}

	settings := cfg.Settings()
	coordinator := &research.Coordinator{Emitter: emitter}
	if cfg.SerperAPIKey != "" {
		serper := research.NewSerperClient(cfg.SerperAPIKey)
		coordinator.SERP = serper
		coordinator.References = serper
	}
	if cfg.YouTubeAPIKey != "" {
		coordinator.Videos = research.NewYouTubeClient(cfg.YouTubeAPIKey)
	}

	var contentScorer pipeline.ContentScorer
	if cfg.ScorerAPIKey != "" && cfg.ScorerBaseURL != "" {
		manager := scorer.NewManager(
			scorer.NewHTTPClient(cfg.ScorerAPIKey, cfg.ScorerBaseURL),
			scorer.NewSessionCache(),
			settings)
		coordinator.Resolver = manager
		contentScorer = manager
	}

	var store *sqlite.Store
	if cfg.DatabasePath != "" && !generateNoSave {
		store, err = sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open run database: %w", err)
		}
	}

	pipelineCfg := pipeline.Config{
		Generator: generator,
		Research:  coordinator,
		Scorer:    contentScorer,
		Settings:  settings,
		Emitter:   emitter,
	}
	if store != nil {
		pipelineCfg.Store = store
	}

	engine, err := pipeline.New(pipelineCfg)
	if err != nil {
		return nil, nil, err
	}

	startProgressRenderer()
	return engine, store, nil
}

var (
	emitter      = events.NewEmitter()
	rendererOnce sync.Once
)

// startProgressRenderer subscribes to pipeline events and renders them as a
// live progress feed.
func startProgressRenderer() {
	rendererOnce.Do(func() {
		ch, _ := emitter.Subscribe()
		go func() {
			cyan := color.New(color.FgCyan).SprintFunc()
			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			for ev := range ch {
				switch ev.Type {
				case events.TypeRunStarted:
					fmt.Printf("\n%s %s\n", cyan("▶"), ev.Message)
				case events.TypeResearchTaskFailed, events.TypeRunFailed:
					fmt.Printf("%s %s\n", red("✗"), ev.Message)
				case events.TypeOptimizeAttempt:
					fmt.Printf("%s attempt %d: %s\n", yellow("○"), ev.Attempt, ev.Message)
				case events.TypeFinalized:
					fmt.Printf("%s %s\n", green("✓"), ev.Message)
				default:
					fmt.Printf("%s %s\n", green("✓"), ev.Message)
				}
			}
		}()
	})
}

func printSummary(content *types.GeneratedContent) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("=== "+content.Title+" ==="))
	fmt.Printf("  ID:          %s\n", content.ID)
	fmt.Printf("  Slug:        %s\n", content.Slug)
	fmt.Printf("  Words:       %d (%d min read)\n", content.Metrics.WordCount, content.Metrics.ReadingMinutes)
	fmt.Printf("  Headings:    %d\n", content.Metrics.HeadingCount)
	if content.Optimization != types.OptimizationSkipped {
		fmt.Printf("  Coverage:    %.0f (%s)\n", content.CoverageScore, content.Optimization)
	}
	if len(content.References) > 0 {
		fmt.Printf("  References:  %d\n", len(content.References))
	}
	fmt.Printf("  %s\n\n", gray(strings.TrimSpace(content.MetaDescription)))
}
