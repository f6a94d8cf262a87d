package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seoforge/seoforge/internal/types"
)

// defaultHTTPTimeout bounds every research call.
const defaultHTTPTimeout = 15 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// SerperClient implements SERPClient and ReferenceClient over a serper.dev
// style search API.
type SerperClient struct {
	APIKey  string
	BaseURL string // defaults to https://google.serper.dev
	HTTP    *http.Client
}

// NewSerperClient creates a SERP client with the default endpoint and timeout.
func NewSerperClient(apiKey string) *SerperClient {
	return &SerperClient{
		APIKey:  apiKey,
		BaseURL: "https://google.serper.dev",
		HTTP:    newHTTPClient(0),
	}
}

type serperResult struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
	PeopleAlsoAsk []struct {
		Question string `json:"question"`
	} `json:"peopleAlsoAsk"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"relatedSearches"`
}

func (c *SerperClient) search(ctx context.Context, query, country string) (*serperResult, error) {
	payload := map[string]string{"q": query}
	if country != "" {
		payload["gl"] = country
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper search returned status %d", resp.StatusCode)
	}

	var result serperResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode serper response: %w", err)
	}
	return &result, nil
}

// Analyze builds a SERPAnalysis from organic results, related questions, and
// related searches.
func (c *SerperClient) Analyze(ctx context.Context, keyword, country string) (*types.SERPAnalysis, error) {
	result, err := c.search(ctx, keyword, country)
	if err != nil {
		return nil, err
	}

	analysis := &types.SERPAnalysis{
		RecommendedWordCount: 2500,
		Intent:               classifyIntent(keyword),
	}
	for _, o := range result.Organic {
		analysis.Competitors = append(analysis.Competitors, types.Competitor{
			Title: o.Title,
			URL:   o.Link,
		})
	}
	for _, q := range result.PeopleAlsoAsk {
		analysis.HeadingSuggestions = append(analysis.HeadingSuggestions, q.Question)
	}
	for _, r := range result.RelatedSearches {
		analysis.ContentGaps = append(analysis.ContentGaps, r.Query)
		analysis.SemanticEntities = append(analysis.SemanticEntities, r.Query)
	}
	return analysis, nil
}

// Find implements ReferenceClient: a search scoped to authoritative sources.
func (c *SerperClient) Find(ctx context.Context, keyword string) ([]types.Reference, error) {
	result, err := c.search(ctx, keyword+" research statistics study", "")
	if err != nil {
		return nil, err
	}

	refs := make([]types.Reference, 0, len(result.Organic))
	for _, o := range result.Organic {
		domain := ""
		if u, err := url.Parse(o.Link); err == nil {
			domain = strings.TrimPrefix(u.Hostname(), "www.")
		}
		refs = append(refs, types.Reference{
			Title:   o.Title,
			URL:     o.Link,
			Domain:  domain,
			Snippet: o.Snippet,
		})
	}
	return refs, nil
}

// classifyIntent applies a coarse keyword heuristic; the SERP provider does
// not label intent directly.
func classifyIntent(keyword string) string {
	kw := strings.ToLower(keyword)
	switch {
	case strings.Contains(kw, "buy") || strings.Contains(kw, "price") || strings.Contains(kw, "discount"):
		return "transactional"
	case strings.Contains(kw, "best") || strings.Contains(kw, "review") || strings.Contains(kw, "vs"):
		return "commercial"
	case strings.Contains(kw, "login") || strings.Contains(kw, "website"):
		return "navigational"
	default:
		return "informational"
	}
}

// YouTubeClient implements VideoClient over the YouTube Data API.
type YouTubeClient struct {
	APIKey  string
	BaseURL string // defaults to https://www.googleapis.com/youtube/v3
	HTTP    *http.Client
}

// NewYouTubeClient creates a video client with the default endpoint and timeout.
func NewYouTubeClient(apiKey string) *YouTubeClient {
	return &YouTubeClient{
		APIKey:  apiKey,
		BaseURL: "https://www.googleapis.com/youtube/v3",
		HTTP:    newHTTPClient(0),
	}
}

// Find searches for videos matching the keyword, biased by content type.
func (c *YouTubeClient) Find(ctx context.Context, keyword string, contentType types.ContentType) ([]types.Video, error) {
	query := keyword
	if contentType == types.ContentTypeHowTo {
		query += " tutorial"
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", "5")
	params.Set("q", query)
	params.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube search returned status %d", resp.StatusCode)
	}

	var result struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode youtube response: %w", err)
	}

	videos := make([]types.Video, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, types.Video{
			ID:      item.ID.VideoID,
			Title:   item.Snippet.Title,
			URL:     "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Channel: item.Snippet.ChannelTitle,
		})
	}
	return videos, nil
}
