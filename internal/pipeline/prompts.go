package pipeline

import (
	"fmt"
	"strings"

	"github.com/seoforge/seoforge/internal/types"
)

const (
	titleSystemPrompt = `You are an SEO copywriter. Respond with a single article title and nothing else: no quotes, no preamble, no alternatives.`

	articleSystemPrompt = `You are an expert long-form content writer. Write complete, publish-ready articles in clean HTML using h2/h3 headings, p paragraphs, and ul/ol lists. Never use markdown. Never address the reader about the writing process.`

	continuationSystemPrompt = `You continue partially written HTML articles. Resume exactly where the text ends, matching tone and structure. Output only new HTML content: no recap, no preamble, no closing remarks about continuing.`

	improveSystemPrompt = `You improve existing HTML articles for search coverage. Work terms in naturally; never produce keyword-stuffed filler. Output only HTML.`

	metadataSystemPrompt = `You write SEO metadata. Respond with a single JSON object and nothing else.`
)

func buildTitlePrompt(req *types.GenerationRequest, bundle *types.ResearchBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an engaging article title for the keyword %q.\n", req.Keyword)
	if bundle.SERP != nil {
		if bundle.SERP.Intent != "" {
			fmt.Fprintf(&b, "Search intent: %s.\n", bundle.SERP.Intent)
		}
		if len(bundle.SERP.Competitors) > 0 {
			b.WriteString("Competing titles (do not copy):\n")
			for i, c := range bundle.SERP.Competitors {
				if i == 3 {
					break
				}
				fmt.Fprintf(&b, "- %s\n", c.Title)
			}
		}
	}
	b.WriteString("The title must contain the keyword and stay under 60 characters.")
	return b.String()
}

func buildArticlePrompt(req *types.GenerationRequest, bundle *types.ResearchBundle, title string, target int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a complete article titled %q targeting the keyword %q.\n", title, req.Keyword)
	fmt.Fprintf(&b, "Length: about %d words.\n", target)
	if req.ContentType != "" {
		fmt.Fprintf(&b, "Format: %s.\n", req.ContentType)
	}

	if bundle.SERP != nil {
		if len(bundle.SERP.HeadingSuggestions) > 0 {
			b.WriteString("\nCover these sections:\n")
			for _, h := range bundle.SERP.HeadingSuggestions {
				fmt.Fprintf(&b, "- %s\n", h)
			}
		}
		if len(bundle.SERP.ContentGaps) > 0 {
			b.WriteString("\nCompetitors miss these angles; include them:\n")
			for _, g := range bundle.SERP.ContentGaps {
				fmt.Fprintf(&b, "- %s\n", g)
			}
		}
	}

	if bundle.Query != nil {
		terms := types.TermStrings(bundle.Query.RequiredTerms)
		if len(terms) > 0 {
			fmt.Fprintf(&b, "\nUse these terms naturally throughout: %s.\n", strings.Join(terms, ", "))
		}
		if len(bundle.Query.Entities) > 0 {
			fmt.Fprintf(&b, "Mention these entities where relevant: %s.\n", strings.Join(bundle.Query.Entities, ", "))
		}
	}

	b.WriteString("\nEnd with a conclusion section. Output HTML only, starting with the first h2.")
	return b.String()
}

func buildContinuationPrompt(tail string, remainingWords int) string {
	var b strings.Builder
	b.WriteString("This HTML article is incomplete. Here is how it currently ends:\n\n")
	b.WriteString(tail)
	fmt.Fprintf(&b, "\n\nContinue the article with roughly %d more words. Pick up mid-thought if the text stops mid-thought. Do not repeat existing content.", remainingWords)
	return b.String()
}

func buildPatchPrompt(gaps gapReport, termLimit, headingLimit int) string {
	var b strings.Builder
	b.WriteString("Write new self-contained HTML sections for an existing article. The sections must read as part of the larger article, not as a standalone piece.\n")

	terms := gaps.Terms
	if len(terms) > termLimit {
		terms = terms[:termLimit]
	}
	if len(terms) > 0 {
		fmt.Fprintf(&b, "\nWork these terms in naturally: %s.\n", strings.Join(terms, ", "))
	}

	headings := gaps.Headings
	if len(headings) > headingLimit {
		headings = headings[:headingLimit]
	}
	if len(headings) > 0 {
		b.WriteString("Add sections with these headings:\n")
		for _, h := range headings {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	if len(gaps.Entities) > 0 {
		fmt.Fprintf(&b, "Mention where relevant: %s.\n", strings.Join(gaps.Entities, ", "))
	}

	b.WriteString("\nOutput 2-4 short sections of HTML (h2 or h3 headings plus paragraphs), nothing else.")
	return b.String()
}

func buildRewritePrompt(html string, gaps gapReport) string {
	var b strings.Builder
	b.WriteString("Improve this HTML article so it covers the missing items below. Keep the structure, voice, and all existing content; edit and extend in place. Return the COMPLETE improved article.\n")
	if len(gaps.Terms) > 0 {
		fmt.Fprintf(&b, "\nMissing terms: %s.\n", strings.Join(gaps.Terms, ", "))
	}
	if len(gaps.Entities) > 0 {
		fmt.Fprintf(&b, "Missing entities: %s.\n", strings.Join(gaps.Entities, ", "))
	}
	if len(gaps.Headings) > 0 {
		fmt.Fprintf(&b, "Missing sections: %s.\n", strings.Join(gaps.Headings, "; "))
	}
	b.WriteString("\nArticle:\n\n")
	b.WriteString(html)
	return b.String()
}

func buildMetadataPrompt(title, keyword, excerpt string) string {
	return fmt.Sprintf(`Write SEO metadata for an article.

Title: %s
Keyword: %s
Opening: %s

Respond with JSON: {"seo_title": "... (max 60 characters, contains the keyword)", "meta_description": "... (150-160 characters, compelling, contains the keyword)"}`,
		title, keyword, excerpt)
}

// fallbackTitle derives a serviceable title from the keyword when the
// generator cannot supply one.
func fallbackTitle(keyword string) string {
	words := strings.Fields(keyword)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return fmt.Sprintf("The Complete Guide to %s", strings.Join(words, " "))
}
