package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoforge/seoforge/internal/ai"
	"github.com/seoforge/seoforge/internal/events"
	"github.com/seoforge/seoforge/internal/research"
	"github.com/seoforge/seoforge/internal/types"
)

// fakeGenerator serves scripted responses keyed by operation. Each operation
// has a queue; an exhausted queue repeats its last entry.
type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string][]string
	errs      map[string]error
	calls     []string
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		responses: make(map[string][]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeGenerator) script(operation string, responses ...string) {
	f.responses[operation] = append(f.responses[operation], responses...)
}

func (f *fakeGenerator) fail(operation string, err error) {
	f.errs[operation] = err
}

func (f *fakeGenerator) callCount(operation string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, op := range f.calls {
		if op == operation {
			n++
		}
	}
	return n
}

func (f *fakeGenerator) Generate(_ context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.Operation)
	if err := f.errs[req.Operation]; err != nil {
		return "", err
	}
	queue := f.responses[req.Operation]
	if len(queue) == 0 {
		return "", fmt.Errorf("no scripted response for operation %q", req.Operation)
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[req.Operation] = queue[1:]
	}
	return resp, nil
}

// fakeScorer returns a scripted score sequence; an exhausted sequence repeats
// its last score.
type fakeScorer struct {
	mu     sync.Mutex
	scores []float64
	err    error
	calls  int
}

func (f *fakeScorer) ScoreContent(_ context.Context, _, _, _ string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.scores) == 0 {
		return 0, fmt.Errorf("no scripted score")
	}
	score := f.scores[0]
	if len(f.scores) > 1 {
		f.scores = f.scores[1:]
	}
	return score, nil
}

type memoryStore struct {
	mu    sync.Mutex
	saved []*types.GeneratedContent
}

func (m *memoryStore) SaveContent(_ context.Context, content *types.GeneratedContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, content)
	return nil
}

type stubSERP struct {
	analysis *types.SERPAnalysis
	err      error
	calls    int
	mu       sync.Mutex
}

func (s *stubSERP) Analyze(_ context.Context, _, _ string) (*types.SERPAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.analysis, s.err
}

type stubResolver struct {
	bundle *types.QueryBundle
}

func (s *stubResolver) ResolveQuery(_ context.Context, _, _ string) (*types.QueryBundle, error) {
	return s.bundle, nil
}

func testSettings() types.Settings {
	s := types.DefaultSettings()
	s.MinWordCount = 50
	s.BatchDelay = time.Millisecond
	return s
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Settings.MinWordCount == 0 {
		cfg.Settings = testSettings()
	}
	engine, err := New(cfg)
	require.NoError(t, err)
	return engine
}

// paragraphs builds an HTML body with roughly n distinct words.
func paragraphs(n int) string {
	var b strings.Builder
	b.WriteString("<p>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "word%d ", i)
		if i > 0 && i%40 == 0 {
			b.WriteString("</p><p>")
		}
	}
	b.WriteString("</p>")
	return b.String()
}

func TestNewRequiresGenerator(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestCompleteDraftStopsWhenThresholdMet(t *testing.T) {
	gen := newFakeGenerator()
	engine := newTestEngine(t, Config{Generator: gen})

	draft := types.Draft{HTML: paragraphs(120)}
	out := engine.completeDraft(context.Background(), draft, &types.GenerationRequest{Keyword: "x"}, 60)

	assert.Equal(t, draft.HTML, out.HTML)
	assert.Zero(t, gen.callCount("continuation"))
}

func TestCompleteDraftAppendsUntilThreshold(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("continuation",
		"<p>fresh alpha content one two three four five six seven eight nine ten eleven twelve</p>",
		"<p>fresh beta content one two three four five six seven eight nine ten eleven twelve more words to cross the line here now today always</p>")
	engine := newTestEngine(t, Config{Generator: gen})

	draft := types.Draft{HTML: paragraphs(30)}
	before := wordCountOf(draft.HTML)
	out := engine.completeDraft(context.Background(), draft, &types.GenerationRequest{Keyword: "x"}, 60)

	assert.GreaterOrEqual(t, wordCountOf(out.HTML), before, "completion must never shrink the draft")
	assert.Greater(t, wordCountOf(out.HTML), before)
	assert.LessOrEqual(t, gen.callCount("continuation"), testSettings().MaxContinuationsShort)
}

func TestCompleteDraftRepetitionGuard(t *testing.T) {
	ending := "the unique closing sentence of this article"
	gen := newFakeGenerator()
	gen.script("continuation", "<p>"+ending+"</p>")
	engine := newTestEngine(t, Config{Generator: gen})

	draft := types.Draft{HTML: "<p>short opening text here</p><p>" + ending + "</p>"}
	out := engine.completeDraft(context.Background(), draft, &types.GenerationRequest{Keyword: "x"}, 60)

	assert.Equal(t, 1, gen.callCount("continuation"), "looping output must stop the loop immediately")
	assert.Equal(t, draft.HTML, out.HTML)
}

func TestCompleteDraftConstantOutputTerminates(t *testing.T) {
	same := "<p>identical continuation text that never changes between attempts at all</p>"
	gen := newFakeGenerator()
	gen.script("continuation", same)
	engine := newTestEngine(t, Config{Generator: gen})

	draft := types.Draft{HTML: paragraphs(10)}
	engine.completeDraft(context.Background(), draft, &types.GenerationRequest{Keyword: "x"}, 2000)

	assert.LessOrEqual(t, gen.callCount("continuation"), 2,
		"a generator that repeats itself must stop the loop within two attempts")
}

func TestCompleteDraftStripsArtifacts(t *testing.T) {
	assert.Equal(t, "<p>real content</p>",
		stripContinuationArtifacts("Here is the continuation:\n```html\n<p>real content</p>\n```"))
	assert.Equal(t, "<p>done</p>",
		stripContinuationArtifacts("<p>done</p>\n\nWould you like me to continue with the next section?"))
}

func TestIncompleteMarkerDetection(t *testing.T) {
	assert.True(t, hasIncompleteMarker("<p>text [Continue in next message]</p>"))
	assert.True(t, hasIncompleteMarker("<p>text</p> Would you like me to continue?"))
	assert.False(t, hasIncompleteMarker("<p>we will continue our discussion of budgets</p>"))
	assert.NotContains(t, removeIncompleteMarkers("<p>a [continued] b</p>"), "[continued]")
}

func TestOptimizePassesAtTarget(t *testing.T) {
	gen := newFakeGenerator()
	scorer := &fakeScorer{scores: []float64{95}}
	engine := newTestEngine(t, Config{Generator: gen, Scorer: scorer})

	qb := &types.QueryBundle{QueryID: "q1"}
	draft := types.Draft{HTML: paragraphs(100)}
	out, state := engine.optimizeCoverage(context.Background(), draft, qb, "title")

	assert.Equal(t, types.OptimizationPassed, state.Outcome)
	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, draft.HTML, out.HTML)
	assert.Equal(t, 95.0, qb.LastScore)
}

func TestOptimizeSkippedWithoutQuery(t *testing.T) {
	emitter := events.NewEmitter()
	ch, cancel := emitter.Subscribe()
	defer cancel()

	engine := newTestEngine(t, Config{Generator: newFakeGenerator(), Scorer: &fakeScorer{}, Emitter: emitter})
	_, state := engine.optimizeCoverage(context.Background(), types.Draft{HTML: "<p>x</p>"}, nil, "t")
	assert.Equal(t, types.OptimizationSkipped, state.Outcome)

	select {
	case ev := <-ch:
		assert.Equal(t, events.TypePhaseSkipped, ev.Type)
	default:
		t.Fatal("skipping optimization must announce itself on the event stream")
	}
}

func TestOptimizeStopsOnStagnation(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("coverage-rewrite", "<p>rewritten draft that still lacks the required terminology entirely, padded out with enough words that the length safety check accepts it as a full replacement for the original body text</p>")
	scorer := &fakeScorer{scores: []float64{50, 50, 50, 50, 50, 50}}
	engine := newTestEngine(t, Config{Generator: gen, Scorer: scorer})

	qb := &types.QueryBundle{
		QueryID:       "q1",
		RequiredTerms: []types.CoverageTerm{{Term: "zzznevermentioned"}},
	}
	draft := types.Draft{HTML: "<p>short body</p>"}
	_, state := engine.optimizeCoverage(context.Background(), draft, qb, "title")

	assert.Equal(t, types.OptimizationStagnant, state.Outcome)
	assert.Equal(t, 3, scorer.calls, "two non-improving rounds end the loop")
}

func TestOptimizeScorerFailureUsesLocalEstimate(t *testing.T) {
	scorer := &fakeScorer{err: fmt.Errorf("scorer down")}
	engine := newTestEngine(t, Config{Generator: newFakeGenerator(), Scorer: scorer})

	qb := &types.QueryBundle{
		QueryID: "q1",
		RequiredTerms: []types.CoverageTerm{
			{Term: "alpha"}, {Term: "beta"},
		},
	}
	draft := types.Draft{HTML: "<p>alpha is covered but the other term is not</p>"}
	out, state := engine.optimizeCoverage(context.Background(), draft, qb, "title")

	assert.Equal(t, types.OptimizationScorerFailed, state.Outcome)
	assert.InDelta(t, 50.0, state.Score, 0.01)
	assert.Equal(t, draft.HTML, out.HTML)
}

func TestRewriteRejectsTruncatedOutput(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("coverage-rewrite", "<p>way too short</p>")
	engine := newTestEngine(t, Config{Generator: gen})

	draft := types.Draft{HTML: paragraphs(200)}
	out, err := engine.rewriteDraft(context.Background(), draft, gapReport{Terms: []string{"x"}})

	require.NoError(t, err)
	assert.Equal(t, draft.HTML, out.HTML, "a rewrite shorter than the safety floor must be discarded")
}

func TestImproveDraftSelectsPatchModeForLargeDrafts(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("coverage-patch", "<h2>Missing Topic</h2><p>"+strings.Repeat("patch content words here ", 10)+"</p>")
	settings := testSettings()
	settings.PatchModeThreshold = 100
	engine := newTestEngine(t, Config{Generator: gen, Settings: settings})

	draft := types.Draft{HTML: paragraphs(80) + "<h2>Conclusion</h2><p>the end</p>"}
	out, err := engine.improveDraft(context.Background(), draft, gapReport{Terms: []string{"missing topic"}})

	require.NoError(t, err)
	assert.Equal(t, 1, gen.callCount("coverage-patch"))
	assert.Zero(t, gen.callCount("coverage-rewrite"))
	assert.Contains(t, out.HTML, "Missing Topic")
	// The patch lands before the conclusion, not after it.
	assert.Less(t, strings.Index(out.HTML, "Missing Topic"), strings.Index(out.HTML, "Conclusion"))
}

func TestPatchRejectsTrivialFragment(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("coverage-patch", "<p>ok</p>")
	engine := newTestEngine(t, Config{Generator: gen})

	draft := types.Draft{HTML: paragraphs(60)}
	_, err := engine.patchDraft(context.Background(), draft, gapReport{Terms: []string{"x"}})
	assert.Error(t, err)
}

func TestSelfCritiqueNoGapsIsNoOp(t *testing.T) {
	gen := newFakeGenerator()
	engine := newTestEngine(t, Config{Generator: gen})

	draft := types.Draft{HTML: "<p>alpha and beta are both here</p>"}
	out := engine.selfCritique(context.Background(), draft, []string{"alpha", "beta"}, nil, nil)

	assert.Equal(t, draft.HTML, out.HTML)
	assert.Empty(t, gen.calls)
}

func TestSelfCritiqueCoverageMarkerOptIn(t *testing.T) {
	gen := newFakeGenerator()
	gen.fail("coverage-rewrite", fmt.Errorf("unavailable"))
	gen.fail("coverage-patch", fmt.Errorf("unavailable"))

	settings := testSettings()
	settings.EnforceCoverageMarks = true
	engine := newTestEngine(t, Config{Generator: gen, Settings: settings})

	draft := types.Draft{HTML: "<h2>Intro</h2><p>body text without the term</p>"}
	out := engine.selfCritique(context.Background(), draft, []string{"ketone levels"}, nil, nil)
	assert.Contains(t, out.HTML, "seo-coverage")
	assert.Contains(t, out.HTML, "ketone levels")

	// Default policy leaves the document untouched.
	engine = newTestEngine(t, Config{Generator: gen})
	out = engine.selfCritique(context.Background(), draft, []string{"ketone levels"}, nil, nil)
	assert.NotContains(t, out.HTML, "seo-coverage")
}

func TestSelfCritiqueAnnouncesSkippedPatch(t *testing.T) {
	gen := newFakeGenerator()
	gen.fail("coverage-rewrite", fmt.Errorf("unavailable"))
	gen.fail("coverage-patch", fmt.Errorf("unavailable"))

	emitter := events.NewEmitter()
	ch, cancel := emitter.Subscribe()
	defer cancel()
	engine := newTestEngine(t, Config{Generator: gen, Emitter: emitter})

	draft := types.Draft{HTML: "<p>body text without the term</p>"}
	out := engine.selfCritique(context.Background(), draft, []string{"zzzmissing"}, nil, nil)
	assert.Equal(t, draft.HTML, out.HTML)

	seen := map[events.Type]bool{}
	for len(ch) > 0 {
		seen[(<-ch).Type] = true
	}
	assert.True(t, seen[events.TypePhaseSkipped], "a failed critique patch must announce the skip")
}

func TestSelfCritiqueRejectsShrinkingImprovement(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("coverage-rewrite", "<p>tiny</p>")
	engine := newTestEngine(t, Config{Generator: gen})

	draft := types.Draft{HTML: paragraphs(60)}
	out := engine.selfCritique(context.Background(), draft, []string{"zzzmissing"}, nil, nil)
	assert.Equal(t, draft.HTML, out.HTML)
}

func TestGenerateContentEndToEnd(t *testing.T) {
	article := "<h2>What Is Intermittent Fasting?</h2><p>" +
		strings.Repeat("intermittent fasting window eating schedule health benefits metabolism insulin sensitivity weight management ", 8) +
		"</p><h2>Conclusion</h2><p>fasting works when the eating window fits your life</p>"

	gen := newFakeGenerator()
	gen.script("article", article)
	gen.script("metadata", `{"seo_title": "Intermittent Fasting: A Complete Guide", "meta_description": "Learn how intermittent fasting works, which eating windows fit different schedules, and how to start safely with a plan matched to your goals and routine."}`)

	serp := &stubSERP{analysis: &types.SERPAnalysis{RecommendedWordCount: 60, Intent: "informational"}}
	resolver := &stubResolver{bundle: &types.QueryBundle{
		QueryID:       "q-42",
		RequiredTerms: []types.CoverageTerm{{Term: "fasting window"}},
	}}
	scorer := &fakeScorer{scores: []float64{95}}
	store := &memoryStore{}

	engine := newTestEngine(t, Config{
		Generator: gen,
		Research:  &research.Coordinator{SERP: serp, Resolver: resolver},
		Scorer:    scorer,
		Store:     store,
	})

	req := &types.GenerationRequest{
		Keyword: "intermittent fasting",
		Title:   "Intermittent Fasting: A Complete Guide",
	}
	content, err := engine.GenerateContent(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, content)

	assert.NotEmpty(t, content.ID)
	assert.Equal(t, "intermittent fasting", content.Keyword)
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9-]+$`), content.Slug)
	assert.LessOrEqual(t, len(content.SEOTitle), 60)
	assert.NotEmpty(t, content.MetaDescription)
	assert.Equal(t, types.OptimizationPassed, content.Optimization)
	assert.Equal(t, 95.0, content.CoverageScore)
	assert.Greater(t, content.Metrics.WordCount, 50)
	assert.Equal(t, "Article", content.Schema.Type)

	require.Len(t, store.saved, 1)
	assert.Equal(t, content.ID, store.saved[0].ID)
}

func TestGenerateMetadataRejectsShortDescription(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("metadata", `{"seo_title": "A Good Title", "meta_description": "Too short."}`)
	engine := newTestEngine(t, Config{Generator: gen})

	html := "<p>" + strings.Repeat("intermittent fasting improves metabolic health when the eating window stays consistent across the week ", 6) + "</p>"
	meta := engine.generateMetadata(context.Background(), "A Good Title", "intermittent fasting", html)

	assert.NotEqual(t, "Too short.", meta.MetaDescription,
		"a description below the minimum length must be replaced by the derived one")
	assert.Contains(t, meta.MetaDescription, "intermittent fasting")
	assert.LessOrEqual(t, len(meta.MetaDescription), testSettings().DescriptionMax)
}

func TestGenerateContentSurvivesMetadataFailure(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("article", paragraphs(120))
	gen.fail("metadata", fmt.Errorf("model unavailable"))

	engine := newTestEngine(t, Config{Generator: gen})
	content, err := engine.GenerateContent(context.Background(), &types.GenerationRequest{
		Keyword:         "keto diet",
		Title:           "Keto Diet Basics",
		TargetWordCount: 100,
	})

	require.NoError(t, err)
	require.NotNil(t, content)
	assert.NotEmpty(t, content.SEOTitle)
	assert.NotEmpty(t, content.MetaDescription)
}

func TestGenerateContentRejectsMissingKeyword(t *testing.T) {
	engine := newTestEngine(t, Config{Generator: newFakeGenerator()})
	_, err := engine.GenerateContent(context.Background(), &types.GenerationRequest{})
	assert.ErrorIs(t, err, types.ErrMissingKeyword)
}

func TestGenerateContentEmptyDraftIsFatal(t *testing.T) {
	gen := newFakeGenerator()
	gen.script("title", "A Title")
	gen.script("article", "<p>too short</p>")
	engine := newTestEngine(t, Config{Generator: gen})

	_, err := engine.GenerateContent(context.Background(), &types.GenerationRequest{Keyword: "x"})
	assert.ErrorIs(t, err, types.ErrEmptyDraft)
}

func TestTargetWordCountPrecedence(t *testing.T) {
	engine := newTestEngine(t, Config{Generator: newFakeGenerator()})

	bundle := &types.ResearchBundle{
		SERP:  &types.SERPAnalysis{RecommendedWordCount: 1800},
		Query: &types.QueryBundle{RecommendedLength: 2200},
	}
	assert.Equal(t, 3000, engine.targetWordCount(&types.GenerationRequest{TargetWordCount: 3000}, bundle))
	assert.Equal(t, 2200, engine.targetWordCount(&types.GenerationRequest{}, bundle))

	bundle.Query = nil
	assert.Equal(t, 1800, engine.targetWordCount(&types.GenerationRequest{}, bundle))

	bundle.SERP = nil
	assert.Equal(t, 2500, engine.targetWordCount(&types.GenerationRequest{}, bundle))
}

func TestComputeGaps(t *testing.T) {
	html := `<h2>Getting Started with Fasting</h2><p>The eating window matters. Insulin drops during a fast.</p>`
	gaps := computeGaps(html,
		[]string{"eating window", "autophagy"},
		[]string{"Insulin", "HGH"},
		[]string{"Getting Started with Fasting Plans", "Common Mistakes"})

	assert.Equal(t, []string{"autophagy"}, gaps.Terms)
	assert.Equal(t, []string{"HGH"}, gaps.Entities)
	assert.Equal(t, []string{"Common Mistakes"}, gaps.Headings, "prefix-matched headings count as present")
}

func TestLocalCoverageScore(t *testing.T) {
	qb := &types.QueryBundle{
		RequiredTerms:    []types.CoverageTerm{{Term: "alpha"}, {Term: "beta"}},
		RecommendedTerms: []types.CoverageTerm{{Term: "gamma"}},
		Entities:         []string{"delta"},
	}
	score := localCoverageScore("<p>alpha gamma delta</p>", qb)
	assert.InDelta(t, 75.0, score, 0.01)

	assert.Zero(t, localCoverageScore("<p>x</p>", &types.QueryBundle{}))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Intermittent Fasting: A Complete Guide", "intermittent-fasting-a-complete-guide"},
		{"  What's New in 2026?  ", "what-s-new-in-2026"},
		{"---", ""},
		{"Déjà Vu", "d-j-vu"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestTruncateAtWord(t *testing.T) {
	assert.Equal(t, "short", truncateAtWord("short", 60))
	got := truncateAtWord("this sentence keeps going well past the limit set for it", 30)
	assert.LessOrEqual(t, len(got), 30)
	assert.NotRegexp(t, regexp.MustCompile(`[ ,;:-]$`), got)
}

func TestExtractJSONObject(t *testing.T) {
	raw := "Here you go:\n```json\n{\"seo_title\": \"T {braces} inside\", \"meta_description\": \"D\"}\n```"
	got := extractJSONObject(raw)
	assert.Equal(t, `{"seo_title": "T {braces} inside", "meta_description": "D"}`, got)

	assert.Equal(t, "no json here", extractJSONObject("no json here"))
}

func TestFallbackTitle(t *testing.T) {
	assert.Equal(t, "The Complete Guide to Intermittent Fasting", fallbackTitle("intermittent fasting"))
}

func TestAnalyzeKeywordsBatch(t *testing.T) {
	serp := &stubSERP{analysis: &types.SERPAnalysis{RecommendedWordCount: 1500}}
	engine := newTestEngine(t, Config{
		Generator: newFakeGenerator(),
		Research:  &research.Coordinator{SERP: serp},
	})

	keywords := []string{"keto diet", "intermittent fasting", "macro counting"}
	results := engine.AnalyzeKeywords(context.Background(), keywords, "us")

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, keywords[i], r.Keyword)
		require.NoError(t, r.Err)
		assert.Equal(t, 1500, r.SERP.RecommendedWordCount)
	}
	assert.Equal(t, 3, serp.calls)
}

func TestAnalyzeKeywordsPacesWindows(t *testing.T) {
	serp := &stubSERP{analysis: &types.SERPAnalysis{RecommendedWordCount: 1000}}
	settings := testSettings()
	settings.BatchDelay = 50 * time.Millisecond
	engine := newTestEngine(t, Config{
		Generator: newFakeGenerator(),
		Research:  &research.Coordinator{SERP: serp},
		Settings:  settings,
	})

	start := time.Now()
	results := engine.AnalyzeKeywords(context.Background(), []string{"a", "b", "c"}, "")
	elapsed := time.Since(start)

	require.Len(t, results, 3)
	assert.GreaterOrEqual(t, elapsed, 45*time.Millisecond,
		"the second window must wait out the configured delay")
}

func TestAnalyzeKeywordsCarriesErrors(t *testing.T) {
	serp := &stubSERP{err: fmt.Errorf("quota exceeded")}
	engine := newTestEngine(t, Config{
		Generator: newFakeGenerator(),
		Research:  &research.Coordinator{SERP: serp},
	})

	results := engine.AnalyzeKeywords(context.Background(), []string{"a", "b"}, "")
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Error(t, results[1].Err)
}

func wordCountOf(html string) int {
	return len(strings.Fields(plainTextOf(html)))
}

func plainTextOf(html string) string {
	re := regexp.MustCompile(`<[^>]+>`)
	return re.ReplaceAllString(html, " ")
}
