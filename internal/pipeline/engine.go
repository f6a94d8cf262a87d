// Package pipeline implements the content generation orchestration engine:
// research fan-out, long-form completion, link enhancement, term-coverage
// optimization, self-critique, and finalization, run as strictly sequential
// phases over a single evolving draft.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/seoforge/seoforge/internal/ai"
	"github.com/seoforge/seoforge/internal/events"
	"github.com/seoforge/seoforge/internal/markup"
	"github.com/seoforge/seoforge/internal/research"
	"github.com/seoforge/seoforge/internal/types"
)

// Generator is the single generation primitive behind every phase: title,
// body, continuation, coverage patch, rewrite, and metadata all go through
// one call shape.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
}

// ContentScorer scores a draft against a resolved coverage query.
type ContentScorer interface {
	ScoreContent(ctx context.Context, queryID, html, title string) (float64, error)
}

// Store persists completed runs. Optional.
type Store interface {
	SaveContent(ctx context.Context, content *types.GeneratedContent) error
}

// Config wires an Engine together.
type Config struct {
	Generator Generator
	Research  *research.Coordinator
	Scorer    ContentScorer   // nil disables coverage optimization
	Store     Store           // nil disables persistence
	Settings  types.Settings  // zero value means DefaultSettings
	Emitter   *events.Emitter // nil disables progress events
}

// Engine drives one keyword through the whole pipeline.
type Engine struct {
	generator Generator
	research  *research.Coordinator
	scorer    ContentScorer
	store     Store
	settings  types.Settings
	emitter   *events.Emitter
}

// New creates an engine. A generator is mandatory; every other collaborator
// degrades a feature when absent instead of failing the constructor.
func New(cfg Config) (*Engine, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("pipeline requires a generator")
	}
	settings := cfg.Settings
	if settings.MinWordCount == 0 {
		settings = types.DefaultSettings()
	}
	coordinator := cfg.Research
	if coordinator == nil {
		coordinator = &research.Coordinator{Emitter: cfg.Emitter}
	}
	return &Engine{
		generator: cfg.Generator,
		research:  coordinator,
		scorer:    cfg.Scorer,
		store:     cfg.Store,
		settings:  settings,
		emitter:   cfg.Emitter,
	}, nil
}

// Settings exposes the engine's effective settings (for the CLI and tests).
func (e *Engine) Settings() types.Settings {
	return e.settings
}

// GenerateContent runs the full pipeline for one request.
//
// Only two things abort a run: an invalid request and an empty draft from
// content generation. Every other failure degrades one feature: missing
// research fields fall back to defaults, a failed post-processing phase
// keeps the previous draft and is skipped with a warning.
func (e *Engine) GenerateContent(ctx context.Context, req *types.GenerationRequest) (*types.GeneratedContent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	e.emit(events.New(events.TypeRunStarted, req.Keyword, fmt.Sprintf("generating article for %q", req.Keyword)))

	// Phase 1: research fan-out.
	e.emit(events.New(events.TypeResearchStarted, req.Keyword, "researching keyword"))
	bundle := e.research.Run(ctx, req)
	e.emit(events.New(events.TypeResearchCompleted, req.Keyword, "research settled"))
	if bundle.Query != nil {
		e.emit(events.New(events.TypeQueryResolved, req.Keyword,
			fmt.Sprintf("coverage query %s resolved", bundle.Query.QueryID)))
	}

	target := e.targetWordCount(req, bundle)

	// Phase 2: title.
	title := req.Title
	if title == "" {
		title = e.generateTitle(ctx, req, bundle)
	}
	e.emit(events.New(events.TypeTitleGenerated, req.Keyword, title))

	// Phase 3: initial draft + completion loop. A missing or empty body is
	// the one fatal condition.
	e.emit(events.New(events.TypeDraftStarted, req.Keyword, fmt.Sprintf("drafting ~%d words", target)))
	draft, err := e.initialDraft(ctx, req, bundle, title, target)
	if err != nil {
		e.emit(events.New(events.TypeRunFailed, req.Keyword, err.Error()))
		return nil, err
	}
	draft = e.completeDraft(ctx, draft, req, target)
	e.emit(events.New(events.TypeDraftCompleted, req.Keyword, "draft complete").
		WithWordCount(markup.WordCount(draft.HTML)))

	// Phase 4: enhancement (links, videos). Non-fatal.
	draft = e.enhanceDraft(ctx, draft, req, bundle)

	// Phase 5: coverage optimization. Skipped without a query or scorer.
	draft, optState := e.optimizeCoverage(ctx, draft, bundle.Query, title)

	// Phase 6: self-critique against required terms, independent of the
	// scorer so the no-scorer path still gets a gap check.
	terms, entities, headings := critiqueInputs(bundle)
	draft = e.selfCritique(ctx, draft, terms, entities, headings)

	// Phase 7: finalize. Never fails: metadata generation inside falls back
	// to derived values.
	content := e.finalize(ctx, draft, req, bundle, optState, title)
	e.emit(events.New(events.TypeFinalized, req.Keyword, "article finalized").
		WithWordCount(content.Metrics.WordCount).WithScore(content.CoverageScore))

	if e.store != nil {
		if err := e.store.SaveContent(ctx, content); err != nil {
			fmt.Fprintf(os.Stderr, "pipeline: failed to persist run for %q: %v\n", req.Keyword, err)
		}
	}
	return content, nil
}

// emit forwards to the emitter; safe when no emitter is configured.
func (e *Engine) emit(ev events.Event) {
	e.emitter.Emit(ev)
}

// targetWordCount picks the length target: explicit request, then scorer
// recommendation, then SERP recommendation, then a moderate default.
func (e *Engine) targetWordCount(req *types.GenerationRequest, bundle *types.ResearchBundle) int {
	if req.TargetWordCount > 0 {
		return req.TargetWordCount
	}
	if bundle.Query != nil && bundle.Query.RecommendedLength > 0 {
		return bundle.Query.RecommendedLength
	}
	if bundle.SERP != nil && bundle.SERP.RecommendedWordCount > 0 {
		return bundle.SERP.RecommendedWordCount
	}
	return 2500
}

// generateTitle asks the generator for a title; failure falls back to a
// keyword-derived title rather than aborting.
func (e *Engine) generateTitle(ctx context.Context, req *types.GenerationRequest, bundle *types.ResearchBundle) string {
	raw, err := e.generator.Generate(ctx, ai.Request{
		Prompt:      buildTitlePrompt(req, bundle),
		System:      titleSystemPrompt,
		Temperature: 0.8,
		MaxTokens:   100,
		Model:       ai.GetSimpleTaskModel(),
		Operation:   "title",
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			fmt.Fprintf(os.Stderr, "pipeline: title generation failed, deriving from keyword: %v\n", err)
		}
		return fallbackTitle(req.Keyword)
	}
	title := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if title == "" {
		return fallbackTitle(req.Keyword)
	}
	return title
}

// initialDraft generates the first article body.
func (e *Engine) initialDraft(ctx context.Context, req *types.GenerationRequest, bundle *types.ResearchBundle, title string, target int) (types.Draft, error) {
	raw, err := e.generator.Generate(ctx, ai.Request{
		Prompt:      buildArticlePrompt(req, bundle, title, target),
		System:      articleSystemPrompt,
		Temperature: 0.7,
		MaxTokens:   8192,
		Operation:   "article",
		Timeout:     e.generationTimeout(target),
	})
	if err != nil {
		return types.Draft{}, fmt.Errorf("content generation failed: %w", err)
	}

	body := strings.TrimSpace(raw)
	if markup.WordCount(body) < 50 {
		return types.Draft{}, types.ErrEmptyDraft
	}
	return types.Draft{HTML: body}, nil
}

// generationTimeout scales the per-attempt timeout with the length target;
// long articles legitimately take minutes.
func (e *Engine) generationTimeout(targetWords int) time.Duration {
	timeout := e.settings.GenerationTimeout
	if targetWords > 2000 {
		timeout += time.Duration(targetWords/1000) * 30 * time.Second
	}
	return timeout
}

// critiqueInputs assembles the term, entity, and heading requirements for the
// self-critique pass from whatever research survived.
func critiqueInputs(bundle *types.ResearchBundle) (terms, entities, headings []string) {
	if bundle.Query != nil {
		terms = types.TermStrings(bundle.Query.RequiredTerms)
		entities = bundle.Query.Entities
		headings = bundle.Query.RecommendedHeadings
	}
	if len(headings) == 0 && bundle.SERP != nil {
		headings = bundle.SERP.HeadingSuggestions
	}
	if len(entities) == 0 && bundle.SERP != nil {
		entities = bundle.SERP.SemanticEntities
	}
	return terms, entities, headings
}
