package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/seoforge/seoforge/internal/types"
)

// HTTPClient is a thin adapter over a NeuronWriter-style content scoring API.
type HTTPClient struct {
	APIKey   string
	BaseURL  string
	Language string // defaults to "English"
	HTTP     *http.Client
}

// NewHTTPClient creates a scoring client with a bounded request timeout.
func NewHTTPClient(apiKey, baseURL string) *HTTPClient {
	return &HTTPClient{
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Language: "English",
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scorer %s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FindQueries lists existing queries for a project filtered by keyword.
func (c *HTTPClient) FindQueries(ctx context.Context, projectID, keyword string) ([]Query, error) {
	var result []struct {
		Query   string `json:"query"`
		Keyword string `json:"keyword"`
		Status  string `json:"status"`
		Created string `json:"created"`
	}
	payload := map[string]string{"project": projectID, "keyword": keyword}
	if err := c.post(ctx, "/list-queries", payload, &result); err != nil {
		return nil, err
	}

	queries := make([]Query, 0, len(result))
	for _, r := range result {
		q := Query{ID: r.Query, Keyword: r.Keyword, Status: r.Status}
		if t, err := time.Parse("2006-01-02 15:04:05", r.Created); err == nil {
			q.Created = t
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// CreateQuery creates a new query resource.
func (c *HTTPClient) CreateQuery(ctx context.Context, projectID, keyword string) (string, error) {
	var result struct {
		Query string `json:"query"`
	}
	payload := map[string]string{
		"project":  projectID,
		"keyword":  keyword,
		"language": c.Language,
	}
	if err := c.post(ctx, "/new-query", payload, &result); err != nil {
		return "", err
	}
	if result.Query == "" {
		return "", fmt.Errorf("scorer returned no query id")
	}
	return result.Query, nil
}

type termPayload struct {
	Term   string  `json:"t"`
	Weight float64 `json:"w"`
}

// GetAnalysis fetches the coverage analysis for a query; ErrNotReady while
// the service is still processing.
func (c *HTTPClient) GetAnalysis(ctx context.Context, queryID string) (*Analysis, error) {
	var result struct {
		Status string `json:"status"`
		Terms  struct {
			Required    []termPayload `json:"content_basic"`
			Recommended []termPayload `json:"content_extended"`
			Extended    []termPayload `json:"content_supplementary"`
			Entities    []termPayload `json:"entities"`
		} `json:"terms"`
		Ideas struct {
			Headings []struct {
				Text string `json:"h"`
			} `json:"suggest_questions"`
		} `json:"ideas"`
		RecommendedLength int `json:"content_length"`
	}
	if err := c.post(ctx, "/get-query", map[string]string{"query": queryID}, &result); err != nil {
		return nil, err
	}
	if result.Status != "ready" {
		return nil, fmt.Errorf("query %s status %q: %w", queryID, result.Status, ErrNotReady)
	}

	analysis := &Analysis{
		RequiredTerms:     convertTerms(result.Terms.Required, types.TermRequired),
		RecommendedTerms:  convertTerms(result.Terms.Recommended, types.TermRecommended),
		ExtendedTerms:     convertTerms(result.Terms.Extended, types.TermExtended),
		RecommendedLength: result.RecommendedLength,
	}
	for _, e := range result.Terms.Entities {
		analysis.Entities = append(analysis.Entities, e.Term)
	}
	for _, h := range result.Ideas.Headings {
		analysis.RecommendedHeadings = append(analysis.RecommendedHeadings, h.Text)
	}
	return analysis, nil
}

func convertTerms(in []termPayload, usage types.TermUsage) []types.CoverageTerm {
	out := make([]types.CoverageTerm, 0, len(in))
	for _, t := range in {
		out = append(out, types.CoverageTerm{Term: t.Term, Weight: t.Weight, Usage: usage})
	}
	return out
}

// ScoreContent evaluates an HTML draft against a query.
func (c *HTTPClient) ScoreContent(ctx context.Context, queryID, html, title string) (float64, error) {
	var result struct {
		ContentScore float64 `json:"content_score"`
	}
	payload := map[string]string{
		"query": queryID,
		"html":  html,
		"title": title,
	}
	if err := c.post(ctx, "/evaluate-content", payload, &result); err != nil {
		return 0, err
	}
	return result.ContentScore, nil
}
