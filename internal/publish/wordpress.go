// Package publish pushes finished articles to a publishing target. The only
// implemented target is the WordPress REST API.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seoforge/seoforge/internal/types"
)

// WordPressConfig holds connection details for one WordPress site.
// Password is an application password, not the account password.
type WordPressConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Status   string `yaml:"status"` // draft or publish; defaults to draft
}

// WordPressClient publishes articles as WordPress posts.
type WordPressClient struct {
	cfg    WordPressConfig
	client *http.Client
}

// NewWordPress creates a client for one site.
func NewWordPress(cfg WordPressConfig, timeout time.Duration) (*WordPressClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("wordpress base URL is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("wordpress credentials are required")
	}
	if cfg.Status == "" {
		cfg.Status = "draft"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &WordPressClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// PostResult identifies the created post.
type PostResult struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

type postPayload struct {
	Title   string `json:"title"`
	Slug    string `json:"slug,omitempty"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
	Status  string `json:"status"`
}

// Publish creates a post from a generated article. The article ships exactly
// as finalized; WordPress-side formatting is left to the site's theme.
func (w *WordPressClient) Publish(ctx context.Context, content *types.GeneratedContent) (*PostResult, error) {
	payload := postPayload{
		Title:   content.Title,
		Slug:    content.Slug,
		Content: content.HTML,
		Excerpt: content.MetaDescription,
		Status:  w.cfg.Status,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.cfg.BaseURL+"/wp-json/wp/v2/posts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(w.cfg.Username, w.cfg.Password)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publish request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("wordpress returned status %d: %s", resp.StatusCode, string(snippet))
	}

	var result PostResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode publish response: %w", err)
	}
	return &result, nil
}
