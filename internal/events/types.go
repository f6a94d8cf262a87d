// Package events defines the typed progress events emitted by the pipeline
// and the emitter that fans them out to subscribers. UIs subscribe for
// streaming phase updates; the CLI renders them as one-line status messages.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened during a generation run.
type Type string

const (
	// TypeRunStarted indicates a generation run began for a keyword
	TypeRunStarted Type = "run_started"
	// TypeResearchStarted indicates the research fan-out began
	TypeResearchStarted Type = "research_started"
	// TypeResearchCompleted indicates the research fan-out settled
	TypeResearchCompleted Type = "research_completed"
	// TypeResearchTaskFailed indicates one research task failed and fell back to a default
	TypeResearchTaskFailed Type = "research_task_failed"
	// TypeQueryResolved indicates a scorer query was found, created, or served from cache
	TypeQueryResolved Type = "query_resolved"
	// TypeTitleGenerated indicates the working title was chosen
	TypeTitleGenerated Type = "title_generated"
	// TypeDraftStarted indicates the initial long-form generation began
	TypeDraftStarted Type = "draft_started"
	// TypeContinuationAdded indicates the completion loop appended a continuation
	TypeContinuationAdded Type = "continuation_added"
	// TypeDraftCompleted indicates the completion loop finished
	TypeDraftCompleted Type = "draft_completed"
	// TypeLinksInjected indicates the enhancement phase injected links
	TypeLinksInjected Type = "links_injected"
	// TypeOptimizeAttempt indicates one coverage optimization attempt ran
	TypeOptimizeAttempt Type = "optimize_attempt"
	// TypeOptimizeFinished indicates the optimization loop reached a terminal state
	TypeOptimizeFinished Type = "optimize_finished"
	// TypeCritiqueStarted indicates the self-critique pass began
	TypeCritiqueStarted Type = "critique_started"
	// TypeCritiqueCompleted indicates the self-critique pass finished
	TypeCritiqueCompleted Type = "critique_completed"
	// TypeFinalized indicates metadata and schema assembly completed
	TypeFinalized Type = "finalized"
	// TypePhaseSkipped indicates a non-fatal phase failed and was skipped
	TypePhaseSkipped Type = "phase_skipped"
	// TypeRunFailed indicates the run aborted (content generation failed)
	TypeRunFailed Type = "run_failed"
)

// Event is one progress update from a generation run.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Keyword   string    `json:"keyword"`
	Message   string    `json:"message"`
	Attempt   int       `json:"attempt,omitempty"`
	Score     float64   `json:"score,omitempty"`
	WordCount int       `json:"word_count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New constructs an event with a fresh ID and timestamp.
func New(t Type, keyword, message string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      t,
		Keyword:   keyword,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithAttempt returns a copy of the event carrying an attempt number.
func (e Event) WithAttempt(n int) Event {
	e.Attempt = n
	return e
}

// WithScore returns a copy of the event carrying a coverage score.
func (e Event) WithScore(score float64) Event {
	e.Score = score
	return e
}

// WithWordCount returns a copy of the event carrying a word count.
func (e Event) WithWordCount(n int) Event {
	e.WordCount = n
	return e
}
