package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seoforge/seoforge/internal/ai"
	"github.com/seoforge/seoforge/internal/markup"
	"github.com/seoforge/seoforge/internal/refs"
	"github.com/seoforge/seoforge/internal/types"
)

// finalize turns the final draft into the publishable artifact: residual
// markup conversion, heading repair, reference ranking, metadata generation
// with defensive truncation, and schema assembly. It cannot fail: metadata
// generation falls back to values derived from the draft itself.
func (e *Engine) finalize(ctx context.Context, draft types.Draft, req *types.GenerationRequest, bundle *types.ResearchBundle, state *types.OptimizationState, title string) *types.GeneratedContent {
	html := markup.ConvertResidualMarkdown(draft.HTML)
	html = markup.RepairHeadings(html)

	ranked := refs.Rank(bundle.References, e.settings.MaxReferences)
	if req.IncludeReferences && len(ranked) > 0 {
		html += referenceSection(ranked)
	}

	meta := e.generateMetadata(ctx, title, req.Keyword, html)

	score := state.Score
	if score == 0 && bundle.Query != nil {
		score = bundle.Query.LastScore
	}

	content := &types.GeneratedContent{
		ID:              uuid.New().String(),
		Keyword:         req.Keyword,
		Title:           title,
		SEOTitle:        meta.SEOTitle,
		Slug:            Slugify(title),
		MetaDescription: meta.MetaDescription,
		HTML:            html,
		Metrics:         deriveMetrics(html, e.settings),
		CoverageScore:   score,
		Optimization:    state.Outcome,
		References:      ranked,
		Schema:          buildSchema(title, meta.MetaDescription, req.Keyword, html),
		GeneratedAt:     time.Now(),
	}
	for _, r := range ranked {
		content.Schema.Citations = append(content.Schema.Citations, r.URL)
	}
	return content
}

// metadata is the generator's structured metadata output.
type metadata struct {
	SEOTitle        string `json:"seo_title"`
	MetaDescription string `json:"meta_description"`
}

// generateMetadata asks the generator for SEO metadata and enforces the
// length constraints defensively: titles are hard-capped and descriptions are
// trimmed at a word boundary when the generator overshoots. Generation
// failure falls back to derived metadata; it never fails the run.
func (e *Engine) generateMetadata(ctx context.Context, title, keyword, html string) metadata {
	fallback := metadata{
		SEOTitle:        truncateAtWord(title, e.settings.TitleMaxChars),
		MetaDescription: defaultDescription(html, e.settings),
	}

	raw, err := e.generator.Generate(ctx, ai.Request{
		Prompt:      buildMetadataPrompt(title, keyword, headChars(markup.PlainText(html), 400)),
		System:      metadataSystemPrompt,
		Temperature: 0.6,
		MaxTokens:   300,
		Model:       ai.GetSimpleTaskModel(),
		Operation:   "metadata",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: metadata generation failed, using derived metadata: %v\n", err)
		return fallback
	}

	var meta metadata
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &meta); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: metadata response was not valid JSON, using derived metadata: %v\n", err)
		return fallback
	}

	if strings.TrimSpace(meta.SEOTitle) == "" {
		meta.SEOTitle = fallback.SEOTitle
	}
	meta.SEOTitle = truncateAtWord(meta.SEOTitle, e.settings.TitleMaxChars)

	if strings.TrimSpace(meta.MetaDescription) == "" {
		meta.MetaDescription = fallback.MetaDescription
	}
	if len(meta.MetaDescription) < e.settings.DescriptionMin && len(fallback.MetaDescription) > len(meta.MetaDescription) {
		// Too short to serve as a search snippet; the derived one is fuller.
		meta.MetaDescription = fallback.MetaDescription
	}
	if len(meta.MetaDescription) > e.settings.DescriptionMax {
		meta.MetaDescription = truncateAtWord(meta.MetaDescription, e.settings.DescriptionMax-3) + "..."
	}
	return meta
}

// extractJSONObject pulls the first balanced JSON object out of a model
// response, tolerating markdown fences and prose around it.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

// referenceSection renders the ranked source list.
func referenceSection(ranked []types.Reference) string {
	var b strings.Builder
	b.WriteString(`<h2>References</h2><ol class="references">`)
	for _, r := range ranked {
		title := r.Title
		if title == "" {
			title = r.Domain
		}
		fmt.Fprintf(&b, `<li><a href="%s" rel="noopener">%s</a></li>`, r.URL, title)
	}
	b.WriteString("</ol>")
	return b.String()
}

// deriveMetrics measures the final body.
func deriveMetrics(html string, settings types.Settings) types.ContentMetrics {
	words := markup.WordCount(html)
	perMin := settings.ReadingWordsPerMin
	if perMin == 0 {
		perMin = 220
	}
	minutes := (words + perMin - 1) / perMin
	return types.ContentMetrics{
		WordCount:      words,
		CharCount:      len(html),
		HeadingCount:   markup.CountElements(html, "h1", "h2", "h3", "h4", "h5", "h6"),
		ParagraphCount: markup.CountElements(html, "p"),
		ReadingMinutes: minutes,
	}
}

// buildSchema assembles the schema.org Article object.
func buildSchema(title, description, keyword, html string) types.ArticleSchema {
	return types.ArticleSchema{
		Context:       "https://schema.org",
		Type:          "Article",
		Headline:      title,
		Description:   description,
		Keywords:      keyword,
		WordCount:     markup.WordCount(html),
		DatePublished: time.Now().Format(time.RFC3339),
	}
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title to a URL slug: lowercase letters, digits, and
// single hyphens only.
func Slugify(title string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// truncateAtWord cuts s to at most max characters, preferring a word
// boundary when one exists in the final quarter of the budget.
func truncateAtWord(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > max*3/4 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:-")
}

// defaultDescription derives a meta description from the opening text when
// the generator cannot supply one, respecting the configured length band.
func defaultDescription(html string, settings types.Settings) string {
	text := markup.PlainText(html)
	if len(text) <= settings.DescriptionMax {
		return text
	}
	return truncateAtWord(text, settings.DescriptionMax-3) + "..."
}
