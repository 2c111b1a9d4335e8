package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agentiq/agentiq/core"
)

const defaultTavilyURL = "https://api.tavily.com/search"

// WebSearchOptions configures the Tavily-backed search capability.
type WebSearchOptions struct {
	// BaseURL overrides the Tavily endpoint, mainly for tests.
	BaseURL string

	// MaxResults bounds the returned result list. Defaults to 5.
	MaxResults int

	// HTTPClient overrides the default client. Defaults to a 15s timeout.
	HTTPClient *http.Client
}

// WebSearch performs the web_search agent's tasks against the Tavily search
// API. It implements core.Capability.
type WebSearch struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
}

var _ core.Capability = (*WebSearch)(nil)

// SearchResult is one entry of a search response.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchResponse is the capability's result value: the provider's direct
// answer, when present, plus the ranked results.
type SearchResponse struct {
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// NewWebSearch creates the search capability. apiKey must be a Tavily key.
func NewWebSearch(apiKey string, optFns ...func(o *WebSearchOptions)) *WebSearch {
	opts := WebSearchOptions{
		BaseURL:    defaultTavilyURL,
		MaxResults: 5,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &WebSearch{
		apiKey:     apiKey,
		baseURL:    opts.BaseURL,
		maxResults: opts.MaxResults,
		client:     opts.HTTPClient,
	}
}

// Execute implements core.Capability. The dependency context, when present,
// is appended to the query so follow-up searches can refine earlier results.
func (w *WebSearch) Execute(ctx context.Context, task string, depContext map[int]any) (any, error) {
	query := task
	if len(depContext) > 0 {
		var hints []string
		for _, v := range depContext {
			hints = append(hints, fmt.Sprintf("%v", v))
		}
		query = task + " " + strings.Join(hints, " ")
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":     w.apiKey,
		"query":       query,
		"max_results": w.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search api status %d: %s", resp.StatusCode, body)
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return out, nil
}
