// Package search wraps the web-search provider and renders its results
// into a bounded context block for the completion call.
//
// Search is an enhancement, not a dependency: provider failures are
// swallowed and the pipeline continues without web context.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/guildmate-bot/guildmate/internal/metrics"
)

const (
	defaultBaseURL    = "https://api.tavily.com"
	defaultMaxResults = 5
	defaultDepth      = "basic"

	snippetLimit = 400
)

// Result is one web search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Client calls the search provider's HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxResults int
	depth      string
}

// NewClient creates a search client. Zero values fall back to provider
// defaults (5 results, basic depth).
func NewClient(apiKey, baseURL string, maxResults int, depth string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if depth == "" {
		depth = defaultDepth
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		maxResults: maxResults,
		depth:      depth,
	}
}

// Search returns up to maxResults hits for query. Provider errors are
// logged and produce an empty list rather than propagating.
func (c *Client) Search(ctx context.Context, query string) []Result {
	results, err := c.search(ctx, query)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		slog.Warn("web search failed, continuing without context", "error", err)
		return nil
	}
	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	return results
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

func (c *Client) search(ctx context.Context, query string) ([]Result, error) {
	payload, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  c.maxResults,
		SearchDepth: c.depth,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling search provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	if len(parsed.Results) > c.maxResults {
		parsed.Results = parsed.Results[:c.maxResults]
	}
	return parsed.Results, nil
}

// Format renders results into a single context string for injection
// into the conversation before the completion call.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No relevant web search results were found."
	}

	var b strings.Builder
	b.WriteString("Web search results:\n")
	for i, r := range results {
		snippet := strings.TrimSpace(r.Content)
		if len(snippet) > snippetLimit {
			snippet = snippet[:snippetLimit] + "…"
		}
		fmt.Fprintf(&b, "\n%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, snippet)
	}
	return b.String()
}
