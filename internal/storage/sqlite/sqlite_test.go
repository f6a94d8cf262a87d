package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoforge/seoforge/internal/storage"
	"github.com/seoforge/seoforge/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "seoforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleContent(id, keyword string, at time.Time) *types.GeneratedContent {
	return &types.GeneratedContent{
		ID:              id,
		Keyword:         keyword,
		Title:           "The Complete Guide to " + keyword,
		SEOTitle:        keyword + " guide",
		Slug:            "guide-" + id,
		MetaDescription: "A practical guide.",
		HTML:            "<h2>Intro</h2><p>body text</p>",
		Metrics:         types.ContentMetrics{WordCount: 2100, HeadingCount: 5, ReadingMinutes: 10},
		CoverageScore:   91,
		Optimization:    types.OptimizationPassed,
		References:      []types.Reference{{Title: "Source", URL: "https://example.gov/a", Domain: "example.gov"}},
		Schema:          types.ArticleSchema{Context: "https://schema.org", Type: "Article", Headline: keyword},
		GeneratedAt:     at,
	}
}

func TestSaveAndGetContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := sampleContent("run-1", "intermittent fasting", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, store.SaveContent(ctx, want))

	got, err := store.GetContent(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, want.Keyword, got.Keyword)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.HTML, got.HTML)
	assert.Equal(t, want.Metrics, got.Metrics)
	assert.Equal(t, want.CoverageScore, got.CoverageScore)
	assert.Equal(t, types.OptimizationPassed, got.Optimization)
	require.Len(t, got.References, 1)
	assert.Equal(t, "https://example.gov/a", got.References[0].URL)
	assert.Equal(t, "Article", got.Schema.Type)
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))
}

func TestGetContentNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetContent(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListContentNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.SaveContent(ctx, sampleContent("run-a", "keto diet", base.Add(-2*time.Hour))))
	require.NoError(t, store.SaveContent(ctx, sampleContent("run-b", "macro counting", base.Add(-time.Hour))))
	require.NoError(t, store.SaveContent(ctx, sampleContent("run-c", "meal prep", base)))

	got, err := store.ListContent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-c", got[0].ID)
	assert.Equal(t, "run-b", got[1].ID)
	assert.Equal(t, 2100, got[0].WordCount)
}

func TestSaveDuplicateIDFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	content := sampleContent("run-1", "keto diet", time.Now().UTC())
	require.NoError(t, store.SaveContent(ctx, content))
	assert.Error(t, store.SaveContent(ctx, content))
}
