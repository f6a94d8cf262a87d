package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/seoforge/seoforge/internal/events"
	"github.com/seoforge/seoforge/internal/markup"
	"github.com/seoforge/seoforge/internal/types"
)

// selfCritique runs a final gap check independent of the external scorer, so
// runs without a coverage query still get terminology enforcement. Missing
// items trigger one patch-or-rewrite attempt; anything still missing after
// that is optionally recorded as a hidden machine-readable marker when the
// EnforceCoverageMarks policy is enabled.
func (e *Engine) selfCritique(ctx context.Context, draft types.Draft, terms, entities, headings []string) types.Draft {
	gaps := computeGaps(draft.HTML, terms, entities, headings)
	if gaps.empty() {
		return draft
	}

	e.emit(events.New(events.TypeCritiqueStarted, "",
		fmt.Sprintf("self-critique found %d missing terms, %d entities, %d headings",
			len(gaps.Terms), len(gaps.Entities), len(gaps.Headings))))

	improved, err := e.improveDraft(ctx, draft, gaps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: self-critique improvement failed, keeping draft: %v\n", err)
		e.emit(events.New(events.TypePhaseSkipped, "", "self-critique patch skipped: "+err.Error()))
		improved = draft
	}
	// Accept the improvement only if it did not shrink the article.
	if markup.WordCount(improved.HTML) >= markup.WordCount(draft.HTML) {
		draft = improved
	}

	if e.settings.EnforceCoverageMarks {
		remaining := computeGaps(draft.HTML, terms, entities, headings)
		still := append(remaining.Terms, remaining.Entities...)
		if len(still) > 0 {
			draft = types.Draft{HTML: markup.InsertCoverageMarker(draft.HTML, still)}
		}
	}

	e.emit(events.New(events.TypeCritiqueCompleted, "", "self-critique pass complete").
		WithWordCount(markup.WordCount(draft.HTML)))
	return draft
}
