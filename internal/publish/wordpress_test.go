package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoforge/seoforge/internal/types"
)

func TestNewWordPressValidation(t *testing.T) {
	_, err := NewWordPress(WordPressConfig{}, 0)
	assert.Error(t, err)

	_, err = NewWordPress(WordPressConfig{BaseURL: "https://example.com"}, 0)
	assert.Error(t, err)

	client, err := NewWordPress(WordPressConfig{
		BaseURL:  "https://example.com/",
		Username: "editor",
		Password: "app-pass",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "draft", client.cfg.Status)
	assert.Equal(t, "https://example.com", client.cfg.BaseURL)
}

func TestPublishCreatesPost(t *testing.T) {
	var received postPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "editor", user)
		assert.Equal(t, "app-pass", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(PostResult{ID: 42, Link: "https://example.com/?p=42"})
	}))
	defer server.Close()

	client, err := NewWordPress(WordPressConfig{
		BaseURL:  server.URL,
		Username: "editor",
		Password: "app-pass",
		Status:   "publish",
	}, time.Second)
	require.NoError(t, err)

	content := &types.GeneratedContent{
		Title:           "Keto Diet Guide",
		Slug:            "keto-diet-guide",
		HTML:            "<h2>Intro</h2><p>body</p>",
		MetaDescription: "A guide.",
	}
	result, err := client.Publish(context.Background(), content)
	require.NoError(t, err)

	assert.Equal(t, 42, result.ID)
	assert.Equal(t, "Keto Diet Guide", received.Title)
	assert.Equal(t, "keto-diet-guide", received.Slug)
	assert.Equal(t, "publish", received.Status)
}

func TestPublishSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"code":"rest_cannot_create"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewWordPress(WordPressConfig{
		BaseURL:  server.URL,
		Username: "editor",
		Password: "bad",
	}, time.Second)
	require.NoError(t, err)

	_, err = client.Publish(context.Background(), &types.GeneratedContent{Title: "x", HTML: "<p>x</p>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
