package pipeline

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/seoforge/seoforge/internal/ai"
	"github.com/seoforge/seoforge/internal/events"
	"github.com/seoforge/seoforge/internal/markup"
	"github.com/seoforge/seoforge/internal/types"
)

// incompleteMarkerRe matches the generator's "please continue" style
// truncation signals left inside a draft.
var incompleteMarkerRe = regexp.MustCompile(`(?i)(\[continue[^\]]*\]|\[to be continued[^\]]*\]|\(to be continued\)|would you like me to continue|shall i continue|let me know if you.{0,3}d like me to continue|please continue|\.\.\.\s*continued)`)

// continuationArtifactRes match boilerplate the generator wraps around a
// continuation chunk.
var continuationArtifactRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(sure[,!]?\s*)?(here( is|'s) the continuation[^.:\n]*[.:]?)\s*`),
	regexp.MustCompile(`(?i)^\s*continuing (from )?where (we|the article) left off[^.:\n]*[.:]?\s*`),
	regexp.MustCompile("(?s)^\\s*```(html)?\\s*"),
	regexp.MustCompile("(?s)\\s*```\\s*$"),
	regexp.MustCompile(`(?i)\s*(would you like me to continue|shall i continue|let me know if you.{0,3}d like me to continue)[^<]*$`),
}

func hasIncompleteMarker(html string) bool {
	return incompleteMarkerRe.MatchString(html)
}

func removeIncompleteMarkers(html string) string {
	return strings.TrimSpace(incompleteMarkerRe.ReplaceAllString(html, ""))
}

func stripContinuationArtifacts(chunk string) string {
	out := chunk
	for _, re := range continuationArtifactRes {
		out = re.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

// completeDraft drives the generator until the draft reaches the minimum
// acceptable word count and carries no truncation marker, within the tier's
// continuation budget. The returned draft never has fewer words than the
// input draft.
func (e *Engine) completeDraft(ctx context.Context, draft types.Draft, req *types.GenerationRequest, target int) types.Draft {
	minWords := e.settings.MinAcceptableWords(target)
	budget := e.settings.ContinuationBudget(target)

	for attempt := 1; attempt <= budget; attempt++ {
		words := markup.WordCount(draft.HTML)
		if words >= minWords && !hasIncompleteMarker(draft.HTML) {
			return draft
		}

		remaining := target - words
		if remaining < 300 {
			remaining = 300
		}

		tail := tailChars(draft.HTML, e.settings.ContinuationTailChars)
		chunk, err := e.generator.Generate(ctx, ai.Request{
			Prompt:      buildContinuationPrompt(tail, remaining),
			System:      continuationSystemPrompt,
			Temperature: 0.7,
			MaxTokens:   4096,
			Operation:   "continuation",
			Timeout:     e.generationTimeout(remaining),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "pipeline: continuation %d failed for %q: %v\n", attempt, req.Keyword, err)
			break
		}

		chunk = stripContinuationArtifacts(chunk)
		if chunk == "" {
			break
		}

		// Repetition guard: when the chunk's opening already appears near
		// the end of the draft the generator has started looping, and more
		// attempts would only append duplicates.
		probe := headChars(markup.PlainText(chunk), e.settings.RepetitionProbeChars)
		window := tailChars(markup.PlainText(draft.HTML), e.settings.RepetitionWindowChars)
		if probe != "" && strings.Contains(window, probe) {
			fmt.Fprintf(os.Stderr, "pipeline: continuation for %q repeated existing content, stopping\n", req.Keyword)
			break
		}

		grown := types.Draft{HTML: removeIncompleteMarkers(draft.HTML) + "\n" + chunk}
		if markup.WordCount(grown.HTML) < markup.WordCount(draft.HTML) {
			// Marker removal shrank the draft more than the chunk added;
			// keep the longer version.
			break
		}
		draft = grown
		e.emit(events.New(events.TypeContinuationAdded, req.Keyword,
			fmt.Sprintf("continuation %d appended", attempt)).
			WithAttempt(attempt).WithWordCount(markup.WordCount(draft.HTML)))
	}

	if words := markup.WordCount(draft.HTML); words < minWords {
		fmt.Fprintf(os.Stderr, "pipeline: draft for %q is %d words, below the %d-word threshold after exhausting continuations\n",
			req.Keyword, words, minWords)
	}
	return draft
}

// tailChars returns the last n characters of s without splitting runes.
func tailChars(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// headChars returns the first n characters of s without splitting runes.
func headChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
