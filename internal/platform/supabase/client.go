package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eduvantage/internal/model"
)

// Client is a minimal PostgREST client for the site_pages vector store.
// Similarity search goes through the match_site_pages RPC; everything else is
// plain table access.
type Client struct {
	baseURL    string
	serviceKey string
	table      string
	httpClient *http.Client
}

type Config struct {
	URL        string
	ServiceKey string
	Table      string
	Timeout    time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	table := cfg.Table
	if table == "" {
		table = "site_pages"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		table:      table,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// MatchSitePages runs the similarity RPC: top matchCount chunks for the query
// embedding, with a university-name filter the store treats as advisory.
func (c *Client) MatchSitePages(ctx context.Context, queryEmbedding []float32, matchCount int, universityName string) ([]model.SitePage, error) {
	reqBody := map[string]interface{}{
		"query_embedding": queryEmbedding,
		"match_count":     matchCount,
		"filter":          map[string]string{"university_name": universityName},
	}

	var pages []model.SitePage
	if err := c.postJSON(ctx, "/rest/v1/rpc/match_"+c.table, reqBody, &pages); err != nil {
		return nil, fmt.Errorf("match %s rpc failed: %w", c.table, err)
	}
	return pages, nil
}

// PageExistsByURL reports whether any chunk already has the given source URL.
func (c *Client) PageExistsByURL(ctx context.Context, pageURL string) (bool, error) {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("url", "eq."+pageURL)
	query.Set("limit", "1")

	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := c.getJSON(ctx, "/rest/v1/"+c.table+"?"+query.Encode(), &rows); err != nil {
		return false, fmt.Errorf("select %s by url failed: %w", c.table, err)
	}
	return len(rows) > 0, nil
}

// InsertPage stores a new chunk.
func (c *Client) InsertPage(ctx context.Context, page model.SitePage) error {
	if err := c.postJSON(ctx, "/rest/v1/"+c.table, page, nil); err != nil {
		return fmt.Errorf("insert %s failed: %w", c.table, err)
	}
	return nil
}

// ListUniversityNames returns the university_name column for every row,
// duplicates and blanks included; callers normalise.
func (c *Client) ListUniversityNames(ctx context.Context) ([]string, error) {
	query := url.Values{}
	query.Set("select", "university_name")

	var rows []struct {
		UniversityName string `json:"university_name"`
	}
	if err := c.getJSON(ctx, "/rest/v1/"+c.table+"?"+query.Encode(), &rows); err != nil {
		return nil, fmt.Errorf("select university names failed: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.UniversityName)
	}
	return names, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	c.setHeaders(req)

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	c.setHeaders(req)

	return c.do(req, out)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("response status %d: %s", resp.StatusCode, string(raw))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response json failed: %w", err)
	}
	return nil
}
