package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/seoforge/seoforge/internal/ai"
	"github.com/seoforge/seoforge/internal/events"
	"github.com/seoforge/seoforge/internal/markup"
	"github.com/seoforge/seoforge/internal/types"
)

// optimizeCoverage iteratively scores the draft and requests targeted edits
// until the target score, the attempt budget, or score stagnation is reached.
// Attempts are strictly sequential: each prompt is built from the latest
// draft. The best-scoring draft seen is what gets returned.
func (e *Engine) optimizeCoverage(ctx context.Context, draft types.Draft, qb *types.QueryBundle, title string) (types.Draft, *types.OptimizationState) {
	state := &types.OptimizationState{Outcome: types.OptimizationSkipped}
	if qb == nil || e.scorer == nil {
		e.emit(events.New(events.TypePhaseSkipped, title, "coverage optimization skipped: no query or scorer available"))
		return draft, state
	}

	keyword := title
	bestDraft := draft
	bestScore := -1.0

	for attempt := 1; attempt <= e.settings.MaxOptimizeAttempts; attempt++ {
		state.Attempt = attempt

		score, err := e.scorer.ScoreContent(ctx, qb.QueryID, draft.HTML, title)
		if err != nil {
			// The scorer itself failing ends optimization, not the run:
			// fall back to a local presence-ratio approximation.
			state.Score = localCoverageScore(draft.HTML, qb)
			state.Outcome = types.OptimizationScorerFailed
			fmt.Fprintf(os.Stderr, "pipeline: coverage scoring failed (attempt %d), using local estimate %.0f: %v\n",
				attempt, state.Score, err)
			return bestOf(bestDraft, bestScore, draft, state.Score), state
		}

		state.PreviousScore = state.Score
		state.Score = score
		qb.LastScore = score
		if score > bestScore {
			bestScore = score
			bestDraft = draft
		}

		e.emit(events.New(events.TypeOptimizeAttempt, keyword,
			fmt.Sprintf("coverage score %.0f (target %.0f)", score, e.settings.TargetScore)).
			WithAttempt(attempt).WithScore(score))

		if score >= e.settings.TargetScore {
			state.Outcome = types.OptimizationPassed
			return draft, state
		}
		if attempt == e.settings.MaxOptimizeAttempts {
			state.Outcome = types.OptimizationExhausted
			break
		}

		if attempt > 1 && score <= state.PreviousScore {
			state.StagnantRound++
		} else {
			state.StagnantRound = 0
		}
		if state.StagnantRound >= e.settings.StagnantRoundLimit {
			state.Outcome = types.OptimizationStagnant
			fmt.Printf("pipeline: coverage score stagnant at %.0f after %d attempts, accepting draft\n", bestScore, attempt)
			break
		}

		gaps := computeGaps(draft.HTML,
			types.TermStrings(qb.RequiredTerms),
			qb.Entities,
			qb.RecommendedHeadings)
		if gaps.empty() {
			// Everything required is present but the score still lags;
			// further edits have nothing concrete to target.
			state.Outcome = types.OptimizationStagnant
			break
		}

		improved, err := e.improveDraft(ctx, draft, gaps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pipeline: coverage improvement attempt %d failed: %v\n", attempt, err)
			state.Outcome = types.OptimizationExhausted
			break
		}
		draft = improved
	}

	final := bestOf(bestDraft, bestScore, draft, state.Score)
	e.emit(events.New(events.TypeOptimizeFinished, keyword,
		fmt.Sprintf("optimization %s at score %.0f", state.Outcome, bestScore)).
		WithScore(bestScore))
	return final, state
}

// improveDraft requests one coverage edit, choosing patch or rewrite mode by
// draft size.
func (e *Engine) improveDraft(ctx context.Context, draft types.Draft, gaps gapReport) (types.Draft, error) {
	if len(draft.HTML) > e.settings.PatchModeThreshold {
		return e.patchDraft(ctx, draft, gaps)
	}
	return e.rewriteDraft(ctx, draft, gaps)
}

// patchDraft appends a small number of self-contained sections covering the
// top missing terms and headings before the conclusion. Large drafts use this
// mode because regenerating the whole document risks truncation and costs
// tokens proportional to content that is not changing.
func (e *Engine) patchDraft(ctx context.Context, draft types.Draft, gaps gapReport) (types.Draft, error) {
	fragment, err := e.generator.Generate(ctx, ai.Request{
		Prompt:      buildPatchPrompt(gaps, e.settings.PatchTermLimit, e.settings.PatchHeadingLimit),
		System:      improveSystemPrompt,
		Temperature: 0.7,
		MaxTokens:   2048,
		Operation:   "coverage-patch",
	})
	if err != nil {
		return draft, err
	}
	fragment = stripContinuationArtifacts(fragment)
	if markup.WordCount(fragment) < 20 {
		return draft, fmt.Errorf("patch fragment too short to use")
	}
	return types.Draft{HTML: markup.InsertBeforeConclusion(draft.HTML, fragment)}, nil
}

// rewriteDraft sends the whole draft back with the gap list and accepts the
// result only when it is not catastrophically shorter than the input, which
// guards against silent truncation.
func (e *Engine) rewriteDraft(ctx context.Context, draft types.Draft, gaps gapReport) (types.Draft, error) {
	rewritten, err := e.generator.Generate(ctx, ai.Request{
		Prompt:      buildRewritePrompt(draft.HTML, gaps),
		System:      improveSystemPrompt,
		Temperature: 0.7,
		MaxTokens:   8192,
		Operation:   "coverage-rewrite",
		Timeout:     e.generationTimeout(markup.WordCount(draft.HTML)),
	})
	if err != nil {
		return draft, err
	}
	rewritten = stripContinuationArtifacts(rewritten)

	minLen := int(float64(len(draft.HTML)) * e.settings.RewriteMinRatio)
	if len(rewritten) < minLen {
		fmt.Fprintf(os.Stderr, "pipeline: rewrite returned %d chars, below the %d-char safety floor; keeping original\n",
			len(rewritten), minLen)
		return draft, nil
	}
	return types.Draft{HTML: rewritten}, nil
}

// bestOf picks the higher-scoring of the tracked best draft and the current
// draft with its final score.
func bestOf(bestDraft types.Draft, bestScore float64, current types.Draft, currentScore float64) types.Draft {
	if currentScore > bestScore {
		return current
	}
	if bestScore < 0 {
		return current
	}
	return bestDraft
}
