package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TavilyClient calls the Tavily search API. The request shape is fixed: one
// advanced-depth result from the last 7 days with a synthesized answer, no
// raw content or images.
type TavilyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type TavilyConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SearchResult is one ranked source document.
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SearchResponse is the provider's answer plus its sources.
type SearchResponse struct {
	Answer  string         `json:"answer"`
	Results []SearchResult `json:"results"`
}

func NewTavilyClient(cfg TavilyConfig) *TavilyClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	return &TavilyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *TavilyClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	reqBody := map[string]interface{}{
		"query":                      query,
		"search_depth":               "advanced",
		"chunks_per_source":          3,
		"max_results":                1,
		"days":                       7,
		"include_answer":             true,
		"include_raw_content":        false,
		"include_images":             false,
		"include_image_descriptions": false,
		"include_domains":            []string{},
		"exclude_domains":            []string{},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal tavily request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build tavily request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tavily response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tavily response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed SearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse tavily json failed: %w", err)
	}
	return &parsed, nil
}
