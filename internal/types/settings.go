package types

import "time"

// Settings centralizes every attempt budget and threshold used by the
// pipeline. Keeping them on one struct (instead of scattered literals) makes
// the loops tunable per content tier and directly testable.
type Settings struct {
	// Long-form completion loop.
	MinWordCount           int     // floor for acceptable article length (default 2000)
	CompletenessRatioLong  float64 // applied to targets >= LongTargetWordCount (default 0.92)
	CompletenessRatioShort float64 // applied to shorter targets (default 0.85)
	LongTargetWordCount    int     // boundary between the two ratios (default 3000)
	MaxContinuationsShort  int     // continuation budget for short targets (default 3)
	MaxContinuationsLong   int     // continuation budget for very long targets (default 8)
	ContinuationTailChars  int     // trailing slice of the draft used to seed continuations
	RepetitionWindowChars  int     // trailing window scanned by the repetition guard
	RepetitionProbeChars   int     // opening slice of a new chunk checked against the window

	// Coverage optimization loop.
	TargetScore          float64 // accept the draft at or above this score (default 90)
	MaxOptimizeAttempts  int     // attempt budget (default 6)
	StagnantRoundLimit   int     // stop after this many non-improving rounds (default 2)
	PatchModeThreshold   int     // drafts larger than this many chars use patch mode (default 10000)
	RewriteMinRatio      float64 // rewrite accepted only at >= this fraction of input length (default 0.97)
	PatchTermLimit       int     // top-N missing terms covered per patch (default 10)
	PatchHeadingLimit    int     // missing headings covered per patch (default 3)
	EnforceCoverageMarks bool    // opt-in: record still-missing terms as a hidden marker (default false)

	// Scorer query lifecycle.
	QueryPollAttempts  int           // polling budget for analysis readiness (default 12)
	QueryPollShort     time.Duration // delay for the first few polls (default 2s)
	QueryPollLong      time.Duration // delay once polling drags on (default 8s)
	QueryPollShortSpan int           // number of polls that use the short delay (default 4)

	// External call budgets.
	NetworkTimeout    time.Duration // research and scorer calls (default 15s)
	GenerationTimeout time.Duration // base timeout for generation calls (default 90s)

	// Finalizer.
	MaxReferences      int // reference list cap after ranking (default 10)
	TitleMaxChars      int // SEO title hard cap (default 60)
	DescriptionMin     int // meta description minimum (default 150)
	DescriptionMax     int // meta description maximum (default 160)
	ReadingWordsPerMin int // reading-time estimate divisor (default 220)

	// Batch analysis helper.
	BatchWindow int           // concurrent SERP calls per batch (default 2)
	BatchDelay  time.Duration // pause between batches (default 1s)
}

// DefaultSettings returns the production defaults. Callers adjust individual
// fields for cheaper tiers or tests.
func DefaultSettings() Settings {
	return Settings{
		MinWordCount:           2000,
		CompletenessRatioLong:  0.92,
		CompletenessRatioShort: 0.85,
		LongTargetWordCount:    3000,
		MaxContinuationsShort:  3,
		MaxContinuationsLong:   8,
		ContinuationTailChars:  1500,
		RepetitionWindowChars:  2000,
		RepetitionProbeChars:   120,

		TargetScore:         90,
		MaxOptimizeAttempts: 6,
		StagnantRoundLimit:  2,
		PatchModeThreshold:  10000,
		RewriteMinRatio:     0.97,
		PatchTermLimit:      10,
		PatchHeadingLimit:   3,

		QueryPollAttempts:  12,
		QueryPollShort:     2 * time.Second,
		QueryPollLong:      8 * time.Second,
		QueryPollShortSpan: 4,

		NetworkTimeout:    15 * time.Second,
		GenerationTimeout: 90 * time.Second,

		MaxReferences:      10,
		TitleMaxChars:      60,
		DescriptionMin:     150,
		DescriptionMax:     160,
		ReadingWordsPerMin: 220,

		BatchWindow: 2,
		BatchDelay:  time.Second,
	}
}

// MinAcceptableWords computes the completion threshold for a target:
// max(MinWordCount, target) scaled by the tier's completeness ratio.
func (s Settings) MinAcceptableWords(target int) int {
	floor := s.MinWordCount
	if target > floor {
		floor = target
	}
	ratio := s.CompletenessRatioShort
	if target >= s.LongTargetWordCount {
		ratio = s.CompletenessRatioLong
	}
	return int(float64(floor) * ratio)
}

// ContinuationBudget returns the continuation attempt budget for a target.
// Very long articles get more room; short ones are cut off quickly.
func (s Settings) ContinuationBudget(target int) int {
	if target >= s.LongTargetWordCount {
		return s.MaxContinuationsLong
	}
	return s.MaxContinuationsShort
}
