// Package types defines the core data model shared by every stage of the
// content generation pipeline: the immutable request, the research bundle
// produced by fan-out, the draft that flows through each phase, and the
// final generated article.
package types

import (
	"strings"
	"time"
)

// ContentType tags the editorial shape of the requested article.
type ContentType string

const (
	ContentTypeBlogPost ContentType = "blog_post"
	ContentTypeHowTo    ContentType = "how_to"
	ContentTypeListicle ContentType = "listicle"
	ContentTypeReview   ContentType = "product_review"
	ContentTypeGuide    ContentType = "guide"
)

// GenerationRequest describes one article generation run.
// It is immutable once the pipeline starts; all tunables that may change
// per tier live in Settings, not here.
type GenerationRequest struct {
	Keyword         string      `json:"keyword"`
	Title           string      `json:"title,omitempty"` // optional; generated when empty
	TargetWordCount int         `json:"target_word_count,omitempty"`
	ContentType     ContentType `json:"content_type,omitempty"`
	Country         string      `json:"country,omitempty"`    // SERP locale, e.g. "us"
	ProjectID       string      `json:"project_id,omitempty"` // coverage scorer project

	IncludeVideos     bool `json:"include_videos"`
	IncludeReferences bool `json:"include_references"`
	IncludeLinks      bool `json:"include_links"`
}

// Validate reports whether the request can start a run.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Keyword) == "" {
		return ErrMissingKeyword
	}
	return nil
}

// Competitor is one ranking page from the SERP analysis.
type Competitor struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	WordCount int    `json:"word_count,omitempty"`
}

// SERPAnalysis summarizes the search results landscape for a keyword.
type SERPAnalysis struct {
	RecommendedWordCount int          `json:"recommended_word_count"`
	HeadingSuggestions   []string     `json:"heading_suggestions,omitempty"`
	ContentGaps          []string     `json:"content_gaps,omitempty"`
	SemanticEntities     []string     `json:"semantic_entities,omitempty"`
	Competitors          []Competitor `json:"competitors,omitempty"`
	Intent               string       `json:"intent"` // informational, commercial, transactional, navigational
}

// Video is a candidate embed surfaced by the video finder.
type Video struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Channel string `json:"channel,omitempty"`
}

// Reference is a citation-worthy source surfaced by the reference finder.
type Reference struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Domain  string `json:"domain,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// TermUsage classifies how strongly the coverage scorer wants a term used.
type TermUsage string

const (
	TermRequired    TermUsage = "required"
	TermRecommended TermUsage = "recommended"
	TermExtended    TermUsage = "extended"
)

// CoverageTerm is one weighted term from the scorer's analysis.
type CoverageTerm struct {
	Term   string    `json:"term"`
	Weight float64   `json:"weight,omitempty"`
	Usage  TermUsage `json:"usage,omitempty"`
}

// QueryBundle holds the scorer query resource and its analysis snapshot.
// LastScore is refreshed on each optimization iteration; everything else is
// read-only after resolution.
type QueryBundle struct {
	QueryID             string         `json:"query_id"`
	RequiredTerms       []CoverageTerm `json:"required_terms,omitempty"`
	RecommendedTerms    []CoverageTerm `json:"recommended_terms,omitempty"`
	ExtendedTerms       []CoverageTerm `json:"extended_terms,omitempty"`
	Entities            []string       `json:"entities,omitempty"`
	RecommendedHeadings []string       `json:"recommended_headings,omitempty"`
	RecommendedLength   int            `json:"recommended_length,omitempty"`
	LastScore           float64        `json:"last_score,omitempty"`
}

// TermStrings flattens a term list to plain strings.
func TermStrings(terms []CoverageTerm) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.Term)
	}
	return out
}

// ResearchBundle aggregates the outcome of the research fan-out.
// Each field falls back independently when its source call fails:
// SERP to a synthesized default, Videos/References to empty lists,
// Query to nil (coverage optimization is skipped downstream).
type ResearchBundle struct {
	SERP       *SERPAnalysis `json:"serp"`
	Videos     []Video       `json:"videos,omitempty"`
	References []Reference   `json:"references,omitempty"`
	Query      *QueryBundle  `json:"query,omitempty"`
}

// Draft is the working article body. Phases produce candidate drafts; the
// engine accepts a candidate only when it passes that phase's validity
// check, otherwise the previous draft is kept.
type Draft struct {
	HTML string `json:"html"`
}

// OptimizationOutcome is the terminal state of the coverage optimization loop.
type OptimizationOutcome string

const (
	OptimizationPassed       OptimizationOutcome = "passed"
	OptimizationExhausted    OptimizationOutcome = "exhausted"
	OptimizationStagnant     OptimizationOutcome = "stagnant"
	OptimizationScorerFailed OptimizationOutcome = "scorer_failed"
	OptimizationSkipped      OptimizationOutcome = "skipped"
)

// OptimizationState tracks loop progress across attempts. It exists only for
// the duration of the optimization loop.
type OptimizationState struct {
	Score         float64
	PreviousScore float64
	StagnantRound int
	Attempt       int
	Outcome       OptimizationOutcome
}

// ContentMetrics are derived measurements of the final article body.
type ContentMetrics struct {
	WordCount      int `json:"word_count"`
	CharCount      int `json:"char_count"`
	HeadingCount   int `json:"heading_count"`
	ParagraphCount int `json:"paragraph_count"`
	ReadingMinutes int `json:"reading_minutes"`
}

// ArticleSchema is the structured-data object describing the article for
// downstream consumers (schema.org Article shape).
type ArticleSchema struct {
	Context       string   `json:"@context"`
	Type          string   `json:"@type"`
	Headline      string   `json:"headline"`
	Description   string   `json:"description,omitempty"`
	Keywords      string   `json:"keywords,omitempty"`
	WordCount     int      `json:"wordCount,omitempty"`
	ArticleBody   string   `json:"articleBody,omitempty"`
	DatePublished string   `json:"datePublished"`
	Citations     []string `json:"citation,omitempty"`
}

// GeneratedContent is the final artifact of a run. Immutable once returned.
type GeneratedContent struct {
	ID              string              `json:"id"`
	Keyword         string              `json:"keyword"`
	Title           string              `json:"title"`
	SEOTitle        string              `json:"seo_title"`
	Slug            string              `json:"slug"`
	MetaDescription string              `json:"meta_description"`
	HTML            string              `json:"html"`
	Metrics         ContentMetrics      `json:"metrics"`
	CoverageScore   float64             `json:"coverage_score,omitempty"`
	Optimization    OptimizationOutcome `json:"optimization"`
	References      []Reference         `json:"references,omitempty"`
	Schema          ArticleSchema       `json:"schema"`
	GeneratedAt     time.Time           `json:"generated_at"`
}
