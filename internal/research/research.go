// Package research runs the pre-generation research fan-out: SERP analysis,
// video lookup, reference lookup, and coverage-query resolution issued
// concurrently, with per-field fallbacks so no single provider failure can
// sink a run.
package research

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/seoforge/seoforge/internal/events"
	"github.com/seoforge/seoforge/internal/types"
)

// SERPClient analyzes the search results landscape for a keyword.
type SERPClient interface {
	Analyze(ctx context.Context, keyword, country string) (*types.SERPAnalysis, error)
}

// VideoClient finds candidate video embeds for a keyword.
type VideoClient interface {
	Find(ctx context.Context, keyword string, contentType types.ContentType) ([]types.Video, error)
}

// ReferenceClient finds citation-worthy sources for a keyword.
type ReferenceClient interface {
	Find(ctx context.Context, keyword string) ([]types.Reference, error)
}

// QueryResolver resolves a coverage-scorer query for a keyword.
// A nil bundle with a nil error means the scorer is not configured or the
// query could not be created; coverage optimization is simply skipped.
type QueryResolver interface {
	ResolveQuery(ctx context.Context, keyword, projectID string) (*types.QueryBundle, error)
}

// Coordinator fans research calls out concurrently and aggregates the
// results. Any client may be nil, in which case that facet is skipped.
type Coordinator struct {
	SERP       SERPClient
	Videos     VideoClient
	References ReferenceClient
	Resolver   QueryResolver
	Emitter    *events.Emitter
}

// Run issues the four research tasks concurrently and waits for all of them
// to settle. Individual failures are logged, emitted as events, and replaced
// by that field's default; Run itself never fails.
func (c *Coordinator) Run(ctx context.Context, req *types.GenerationRequest) *types.ResearchBundle {
	bundle := &types.ResearchBundle{}

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				fmt.Fprintf(os.Stderr, "research: %s lookup failed for %q: %v\n", name, req.Keyword, err)
				c.Emitter.Emit(events.New(events.TypeResearchTaskFailed, req.Keyword,
					fmt.Sprintf("%s lookup failed, using fallback", name)))
			}
		}()
	}

	// Each task writes to its own bundle field, so no mutex is needed beyond
	// the WaitGroup barrier.
	run("serp", func() error {
		if c.SERP == nil {
			return nil
		}
		serp, err := c.SERP.Analyze(ctx, req.Keyword, req.Country)
		if err != nil {
			return err
		}
		bundle.SERP = serp
		return nil
	})

	run("video", func() error {
		if c.Videos == nil || !req.IncludeVideos {
			return nil
		}
		videos, err := c.Videos.Find(ctx, req.Keyword, req.ContentType)
		if err != nil {
			return err
		}
		bundle.Videos = videos
		return nil
	})

	run("reference", func() error {
		if c.References == nil || !req.IncludeReferences {
			return nil
		}
		refs, err := c.References.Find(ctx, req.Keyword)
		if err != nil {
			return err
		}
		bundle.References = refs
		return nil
	})

	run("query", func() error {
		if c.Resolver == nil {
			return nil
		}
		qb, err := c.Resolver.ResolveQuery(ctx, req.Keyword, req.ProjectID)
		if err != nil {
			return err
		}
		bundle.Query = qb
		return nil
	})

	wg.Wait()

	if bundle.SERP == nil {
		bundle.SERP = DefaultSERPAnalysis(req)
	}
	if bundle.Videos == nil {
		bundle.Videos = []types.Video{}
	}
	if bundle.References == nil {
		bundle.References = []types.Reference{}
	}
	return bundle
}

// AnalyzeSERP runs only the SERP facet. Bulk keyword analysis uses this
// directly instead of the full fan-out.
func (c *Coordinator) AnalyzeSERP(ctx context.Context, keyword, country string) (*types.SERPAnalysis, error) {
	if c.SERP == nil {
		return nil, fmt.Errorf("no SERP provider configured")
	}
	return c.SERP.Analyze(ctx, keyword, country)
}

// DefaultSERPAnalysis synthesizes a generic analysis when the SERP provider
// is unavailable: fixed generic headings, a moderate length target, and
// informational intent.
func DefaultSERPAnalysis(req *types.GenerationRequest) *types.SERPAnalysis {
	target := req.TargetWordCount
	if target == 0 {
		target = 2500
	}
	kw := req.Keyword
	return &types.SERPAnalysis{
		RecommendedWordCount: target,
		HeadingSuggestions: []string{
			fmt.Sprintf("What Is %s?", kw),
			fmt.Sprintf("Benefits of %s", kw),
			fmt.Sprintf("How to Get Started with %s", kw),
			"Common Mistakes to Avoid",
			"Frequently Asked Questions",
			"Conclusion",
		},
		Intent: "informational",
	}
}
