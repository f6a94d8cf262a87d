package scorer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/seoforge/seoforge/internal/types"
)

// Manager owns query resolution for the pipeline. It is safe for concurrent
// use: the cache mutex protects reads and writes, and the singleflight group
// collapses concurrent resolutions of the same normalized keyword into one
// in-flight call so the at-most-one-creation invariant holds even when two
// runs miss the cache at the same time.
type Manager struct {
	client   Client
	cache    *SessionCache
	settings types.Settings
	flight   singleflight.Group
}

// NewManager creates a manager. The cache must be non-nil so the
// at-most-one-creation invariant holds across every call site sharing it.
func NewManager(client Client, cache *SessionCache, settings types.Settings) *Manager {
	if cache == nil {
		cache = NewSessionCache()
	}
	return &Manager{client: client, cache: cache, settings: settings}
}

// ResolveQuery returns a ready QueryBundle for the keyword, or (nil, nil)
// when the scorer cannot serve one. Resolution order:
//
//  1. session cache (no network on a hit)
//  2. scored search of existing queries on the service
//  3. creation of a new query
//
// Creation failure is non-fatal: the run proceeds without coverage
// optimization.
func (m *Manager) ResolveQuery(ctx context.Context, keyword, projectID string) (*types.QueryBundle, error) {
	if m.client == nil {
		return nil, nil
	}

	key := normalizeKeyword(keyword)
	if key == "" {
		return nil, nil
	}

	if bundle, ok := m.cache.get(key); ok {
		fmt.Printf("scorer: cache hit for %q (query %s)\n", keyword, bundle.QueryID)
		return bundle, nil
	}

	v, err, _ := m.flight.Do(key, func() (interface{}, error) {
		return m.resolve(ctx, keyword, projectID, key)
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*types.QueryBundle), nil
}

// resolve runs the miss path for one normalized key. The singleflight group
// guarantees only one resolve per key runs at a time; the cache re-check
// covers callers that queued behind a flight which already populated it.
func (m *Manager) resolve(ctx context.Context, keyword, projectID, key string) (*types.QueryBundle, error) {
	if bundle, ok := m.cache.get(key); ok {
		return bundle, nil
	}

	queryID, err := m.findExistingQuery(ctx, projectID, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scorer: query search failed for %q: %v\n", keyword, err)
	}

	if queryID == "" {
		queryID, err = m.client.CreateQuery(ctx, projectID, keyword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scorer: query creation failed for %q, skipping coverage optimization: %v\n", keyword, err)
			return nil, nil
		}
		fmt.Printf("scorer: created query %s for %q\n", queryID, keyword)
	}

	analysis, err := m.pollAnalysis(ctx, queryID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scorer: analysis unavailable for query %s: %v\n", queryID, err)
		return nil, nil
	}
	if analysis.Empty() {
		fmt.Fprintf(os.Stderr, "scorer: query %s is ready but has no usable terms\n", queryID)
	}

	bundle := &types.QueryBundle{
		QueryID:             queryID,
		RequiredTerms:       analysis.RequiredTerms,
		RecommendedTerms:    analysis.RecommendedTerms,
		ExtendedTerms:       analysis.ExtendedTerms,
		Entities:            analysis.Entities,
		RecommendedHeadings: analysis.RecommendedHeadings,
		RecommendedLength:   analysis.RecommendedLength,
	}
	m.cache.put(key, bundle, "ready")
	return bundle, nil
}

// RemoveFromCache forces the next resolution of a keyword to hit the service
// again. Callers use it after detecting a permanently broken cached query
// (ready status but zero usable terms).
func (m *Manager) RemoveFromCache(keyword string) {
	m.cache.remove(normalizeKeyword(keyword))
}

// ScoreContent proxies to the client so the pipeline only needs the Manager.
func (m *Manager) ScoreContent(ctx context.Context, queryID, html, title string) (float64, error) {
	if m.client == nil {
		return 0, errors.New("scorer client not configured")
	}
	return m.client.ScoreContent(ctx, queryID, html, title)
}

// findExistingQuery searches the service for a query matching the normalized
// keyword and returns the highest-scoring candidate above zero.
func (m *Manager) findExistingQuery(ctx context.Context, projectID, normalized string) (string, error) {
	candidates, err := m.client.FindQueries(ctx, projectID, normalized)
	if err != nil {
		return "", err
	}

	bestID := ""
	bestScore := 0
	for _, q := range candidates {
		score := matchScore(normalized, normalizeKeyword(q.Keyword))
		if score > bestScore {
			bestScore = score
			bestID = q.ID
		}
	}
	if bestID != "" {
		fmt.Printf("scorer: matched existing query %s (score %d)\n", bestID, bestScore)
	}
	return bestID, nil
}

// pollAnalysis polls for analysis readiness with progressive backoff: a short
// delay for the first few attempts, a longer one afterward. An error other
// than ErrNotReady aborts immediately.
func (m *Manager) pollAnalysis(ctx context.Context, queryID string) (*Analysis, error) {
	attempts := m.settings.QueryPollAttempts
	if attempts == 0 {
		attempts = 12
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		analysis, err := m.client.GetAnalysis(ctx, queryID)
		if err == nil {
			return analysis, nil
		}
		if !errors.Is(err, ErrNotReady) {
			return nil, err
		}
		if attempt == attempts {
			break
		}

		delay := m.settings.QueryPollShort
		if attempt > m.settings.QueryPollShortSpan {
			delay = m.settings.QueryPollLong
		}
		if delay == 0 {
			delay = 2 * time.Second
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("analysis for query %s not ready after %d attempts", queryID, attempts)
}

var (
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	yearRe  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// normalizeKeyword produces the cache key: case-folded, punctuation and bare
// 4-digit years stripped, whitespace collapsed.
func normalizeKeyword(keyword string) string {
	s := strings.ToLower(keyword)
	s = punctRe.ReplaceAllString(s, " ")
	s = yearRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// matchScore scores how well a candidate keyword matches the target:
// exact match 100, substring containment 80, token overlap of at least half
// the target tokens a proportional score up to 70. Zero means no match.
func matchScore(target, candidate string) int {
	if target == "" || candidate == "" {
		return 0
	}
	if target == candidate {
		return 100
	}
	if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
		return 80
	}

	targetTokens := strings.Fields(target)
	candidateTokens := make(map[string]bool)
	for _, tok := range strings.Fields(candidate) {
		candidateTokens[tok] = true
	}

	overlap := 0
	for _, tok := range targetTokens {
		if candidateTokens[tok] {
			overlap++
		}
	}
	if overlap*2 < len(targetTokens) {
		return 0
	}
	return 70 * overlap / len(targetTokens)
}
