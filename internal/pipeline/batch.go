package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/time/rate"

	"github.com/seoforge/seoforge/internal/types"
)

// KeywordAnalysis is one keyword's research result from a batch run.
type KeywordAnalysis struct {
	Keyword string
	SERP    *types.SERPAnalysis
	Err     error
}

// AnalyzeKeywords runs SERP analysis for a keyword list in small concurrent
// windows with a pause between windows, so bulk planning sessions stay inside
// the research provider's rate limits. Results come back in input order; a
// failed keyword carries its error rather than sinking the batch.
func (e *Engine) AnalyzeKeywords(ctx context.Context, keywords []string, country string) []KeywordAnalysis {
	results := make([]KeywordAnalysis, len(keywords))
	if len(keywords) == 0 {
		return results
	}

	window := e.settings.BatchWindow
	if window <= 0 {
		window = 1
	}
	limiter := rate.NewLimiter(rate.Every(e.settings.BatchDelay), 1)
	// Spend the limiter's initial token on the first window so the first
	// inter-window Wait actually pauses for BatchDelay.
	limiter.Allow()

	for start := 0; start < len(keywords); start += window {
		if start > 0 {
			if err := limiter.Wait(ctx); err != nil {
				for i := start; i < len(keywords); i++ {
					results[i] = KeywordAnalysis{Keyword: keywords[i], Err: ctx.Err()}
				}
				return results
			}
		}

		end := start + window
		if end > len(keywords) {
			end = len(keywords)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				keyword := keywords[idx]
				serp, err := e.research.AnalyzeSERP(ctx, keyword, country)
				if err != nil {
					fmt.Fprintf(os.Stderr, "pipeline: batch analysis failed for %q: %v\n", keyword, err)
					results[idx] = KeywordAnalysis{Keyword: keyword, Err: err}
					return
				}
				results[idx] = KeywordAnalysis{Keyword: keyword, SERP: serp}
			}(i)
		}
		wg.Wait()
	}
	return results
}
