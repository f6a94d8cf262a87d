// Package scorer integrates the external term-coverage scoring service: it
// owns the lifecycle of a scorer "query" resource per keyword (find, create,
// poll for analysis, score) and the session cache that guarantees at most one
// query is ever created per normalized keyword per process lifetime.
package scorer

import (
	"context"
	"errors"
	"time"

	"github.com/seoforge/seoforge/internal/types"
)

// ErrNotReady is returned by GetAnalysis while the service is still
// processing a query. Any other error aborts polling immediately.
var ErrNotReady = errors.New("query analysis not ready")

// Query is one query resource on the scoring service.
type Query struct {
	ID      string
	Keyword string
	Status  string
	Created time.Time
}

// Analysis is the coverage analysis snapshot for a ready query.
type Analysis struct {
	RequiredTerms       []types.CoverageTerm
	RecommendedTerms    []types.CoverageTerm
	ExtendedTerms       []types.CoverageTerm
	Entities            []string
	RecommendedHeadings []string
	RecommendedLength   int
}

// Empty reports whether the analysis carries no usable terms. Ready-but-empty
// analyses are accepted with a warning instead of being polled forever.
func (a *Analysis) Empty() bool {
	return a == nil || (len(a.RequiredTerms) == 0 && len(a.RecommendedTerms) == 0 && len(a.ExtendedTerms) == 0)
}

// Client is the external scoring service API.
type Client interface {
	// FindQueries returns existing queries that may match the keyword.
	FindQueries(ctx context.Context, projectID, keyword string) ([]Query, error)
	// CreateQuery creates a new query resource and returns its id.
	CreateQuery(ctx context.Context, projectID, keyword string) (string, error)
	// GetAnalysis returns the analysis for a query, or ErrNotReady.
	GetAnalysis(ctx context.Context, queryID string) (*Analysis, error)
	// ScoreContent scores an HTML draft against a query (0-100).
	ScoreContent(ctx context.Context, queryID, html, title string) (float64, error)
}
