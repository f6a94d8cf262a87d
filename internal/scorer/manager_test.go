package scorer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoforge/seoforge/internal/types"
)

// fakeClient counts calls so tests can assert the idempotency invariant.
type fakeClient struct {
	mu            sync.Mutex
	queries       []Query
	findErr       error
	createID      string
	createErr     error
	createDelay   time.Duration
	createCalls   int
	analysis      *Analysis
	analysisErrs  []error // consumed per GetAnalysis call; nil entry means success
	analysisCalls int
	score         float64
	scoreErr      error
}

func (f *fakeClient) FindQueries(context.Context, string, string) ([]Query, error) {
	return f.queries, f.findErr
}

func (f *fakeClient) CreateQuery(context.Context, string, string) (string, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	if f.createDelay > 0 {
		time.Sleep(f.createDelay)
	}
	return f.createID, f.createErr
}

func (f *fakeClient) GetAnalysis(context.Context, string) (*Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analysisCalls++
	if len(f.analysisErrs) > 0 {
		err := f.analysisErrs[0]
		f.analysisErrs = f.analysisErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.analysis, nil
}

func (f *fakeClient) ScoreContent(context.Context, string, string, string) (float64, error) {
	return f.score, f.scoreErr
}

func fastSettings() types.Settings {
	s := types.DefaultSettings()
	s.QueryPollAttempts = 3
	s.QueryPollShort = 0
	s.QueryPollLong = 0
	return s
}

func readyAnalysis() *Analysis {
	return &Analysis{
		RequiredTerms: []types.CoverageTerm{{Term: "fasting window", Usage: types.TermRequired}},
		Entities:      []string{"autophagy"},
	}
}

func TestResolveQueryCreatesOnceForSameKeyword(t *testing.T) {
	client := &fakeClient{createID: "q-77", analysis: readyAnalysis()}
	m := NewManager(client, NewSessionCache(), fastSettings())

	first, err := m.ResolveQuery(context.Background(), "Intermittent Fasting", "proj")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := m.ResolveQuery(context.Background(), "intermittent   fasting!", "proj")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, 1, client.createCalls, "same normalized keyword must create at most one query")
	assert.Equal(t, first.QueryID, second.QueryID)
}

func TestResolveQueryConcurrentSameKeywordCreatesOnce(t *testing.T) {
	client := &fakeClient{createID: "q-77", createDelay: 20 * time.Millisecond, analysis: readyAnalysis()}
	m := NewManager(client, NewSessionCache(), fastSettings())

	const resolvers = 4
	bundles := make([]*types.QueryBundle, resolvers)
	var wg sync.WaitGroup
	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bundle, err := m.ResolveQuery(context.Background(), "intermittent fasting", "proj")
			require.NoError(t, err)
			bundles[i] = bundle
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, client.createCalls, "concurrent resolutions of one keyword must share a single creation")
	for _, bundle := range bundles {
		require.NotNil(t, bundle)
		assert.Equal(t, "q-77", bundle.QueryID)
	}
}

func TestResolveQueryPrefersExistingQuery(t *testing.T) {
	client := &fakeClient{
		queries:  []Query{{ID: "q-old", Keyword: "intermittent fasting"}},
		analysis: readyAnalysis(),
	}
	m := NewManager(client, NewSessionCache(), fastSettings())

	bundle, err := m.ResolveQuery(context.Background(), "intermittent fasting", "proj")
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Equal(t, "q-old", bundle.QueryID)
	assert.Zero(t, client.createCalls)
}

func TestResolveQueryCreateFailureIsNonFatal(t *testing.T) {
	client := &fakeClient{createErr: errors.New("402 payment required")}
	m := NewManager(client, NewSessionCache(), fastSettings())

	bundle, err := m.ResolveQuery(context.Background(), "keto diet", "proj")
	assert.NoError(t, err)
	assert.Nil(t, bundle)
}

func TestResolveQueryPollsUntilReady(t *testing.T) {
	client := &fakeClient{
		createID:     "q-1",
		analysis:     readyAnalysis(),
		analysisErrs: []error{ErrNotReady, ErrNotReady, nil},
	}
	m := NewManager(client, NewSessionCache(), fastSettings())

	bundle, err := m.ResolveQuery(context.Background(), "keto diet", "proj")
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Equal(t, 3, client.analysisCalls)
}

func TestResolveQueryHardErrorAbortsPolling(t *testing.T) {
	client := &fakeClient{
		createID:     "q-1",
		analysisErrs: []error{errors.New("403 forbidden")},
	}
	m := NewManager(client, NewSessionCache(), fastSettings())

	bundle, err := m.ResolveQuery(context.Background(), "keto diet", "proj")
	assert.NoError(t, err)
	assert.Nil(t, bundle)
	assert.Equal(t, 1, client.analysisCalls, "non-not-ready errors must stop polling")
}

func TestResolveQueryAcceptsReadyButEmpty(t *testing.T) {
	client := &fakeClient{createID: "q-1", analysis: &Analysis{}}
	m := NewManager(client, NewSessionCache(), fastSettings())

	bundle, err := m.ResolveQuery(context.Background(), "keto diet", "proj")
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Empty(t, bundle.RequiredTerms)
}

func TestRemoveFromCacheForcesReResolution(t *testing.T) {
	client := &fakeClient{createID: "q-1", analysis: readyAnalysis()}
	cache := NewSessionCache()
	m := NewManager(client, cache, fastSettings())

	_, err := m.ResolveQuery(context.Background(), "keto diet", "proj")
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	m.RemoveFromCache("Keto Diet")
	assert.Zero(t, cache.Len())

	_, err = m.ResolveQuery(context.Background(), "keto diet", "proj")
	require.NoError(t, err)
	assert.Equal(t, 2, client.createCalls)
}

func TestIsolatedCachesDoNotShareState(t *testing.T) {
	client := &fakeClient{createID: "q-1", analysis: readyAnalysis()}
	m1 := NewManager(client, NewSessionCache(), fastSettings())
	m2 := NewManager(client, NewSessionCache(), fastSettings())

	_, err := m1.ResolveQuery(context.Background(), "keto diet", "proj")
	require.NoError(t, err)
	_, err = m2.ResolveQuery(context.Background(), "keto diet", "proj")
	require.NoError(t, err)

	assert.Equal(t, 2, client.createCalls, "separate caches resolve independently")
}

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Intermittent Fasting", "intermittent fasting"},
		{"  keto   diet  ", "keto diet"},
		{"best laptops 2024", "best laptops"},
		{"what's new?!", "what s new"},
		{"SEO: The Guide (2023)", "seo the guide"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeKeyword(tt.in))
		})
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		candidate string
		want      int
	}{
		{"exact", "keto diet", "keto diet", 100},
		{"contains", "keto diet", "keto diet plan", 80},
		{"full overlap different order", "diet keto", "keto diet", 70},
		{"half overlap", "keto diet plan meals", "keto diet pizza", 35},
		{"below half overlap", "keto diet plan meals", "keto pizza", 0},
		{"no overlap", "keto diet", "running shoes", 0},
		{"empty", "", "keto", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchScore(tt.target, tt.candidate))
		})
	}
}
