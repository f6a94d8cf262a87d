package pipeline

import (
	"strings"

	"github.com/seoforge/seoforge/internal/markup"
	"github.com/seoforge/seoforge/internal/types"
)

// gapReport lists required items missing from a draft.
type gapReport struct {
	Terms    []string
	Entities []string
	Headings []string
}

func (g gapReport) empty() bool {
	return len(g.Terms) == 0 && len(g.Entities) == 0 && len(g.Headings) == 0
}

// computeGaps checks each required term, entity, and heading against the
// draft. Terms and entities use a literal case-insensitive substring check on
// the whole draft text; headings use a prefix match against actual heading
// text with a substring fallback.
func computeGaps(html string, terms, entities, headings []string) gapReport {
	lower := strings.ToLower(html)
	var report gapReport

	for _, term := range dedupe(terms) {
		if term != "" && !strings.Contains(lower, strings.ToLower(term)) {
			report.Terms = append(report.Terms, term)
		}
	}
	for _, entity := range dedupe(entities) {
		if entity != "" && !strings.Contains(lower, strings.ToLower(entity)) {
			report.Entities = append(report.Entities, entity)
		}
	}

	actual := markup.Headings(html)
	for _, want := range dedupe(headings) {
		if want == "" {
			continue
		}
		if !headingPresent(actual, lower, want) {
			report.Headings = append(report.Headings, want)
		}
	}
	return report
}

// headingPresent reports whether a recommended heading is already covered.
func headingPresent(actual []markup.Heading, lowerDraft, want string) bool {
	wantLower := strings.ToLower(strings.TrimSpace(want))
	prefix := headChars(wantLower, 25)
	for _, h := range actual {
		text := strings.ToLower(strings.TrimSpace(h.Text))
		if strings.HasPrefix(text, prefix) || strings.HasPrefix(wantLower, headChars(text, 25)) {
			return true
		}
	}
	return strings.Contains(lowerDraft, wantLower)
}

// localCoverageScore approximates the external coverage score as the
// presence ratio of all known terms, used when the scorer itself fails.
func localCoverageScore(html string, qb *types.QueryBundle) float64 {
	all := append(types.TermStrings(qb.RequiredTerms), types.TermStrings(qb.RecommendedTerms)...)
	all = append(all, qb.Entities...)
	all = dedupe(all)
	if len(all) == 0 {
		return 0
	}

	lower := strings.ToLower(html)
	present := 0
	for _, term := range all {
		if strings.Contains(lower, strings.ToLower(term)) {
			present++
		}
	}
	return 100 * float64(present) / float64(len(all))
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
