package capability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentiq/agentiq/model"
)

func TestModelSynthesizerRendersResultsInOrder(t *testing.T) {
	m := model.NewMockModel("synth-model")
	// The mock echoes unregistered prompts, so the prompt shape is testable
	// through the answer.
	s := NewModelSynthesizer(m)

	answer, err := s.Synthesize(context.Background(), "what happened?", map[int]any{
		1: "second result",
		0: "first result",
	})
	require.NoError(t, err)

	first := strings.Index(answer, "[0] first result")
	second := strings.Index(answer, "[1] second result")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second, "results must render in index order")
}

func TestModelCapabilityIncludesDependencyContext(t *testing.T) {
	m := model.NewMockModel("cap-model")
	c := NewModelCapability(m)

	result, err := c.Execute(context.Background(), "analyze the data", map[int]any{0: "raw numbers"})
	require.NoError(t, err)
	text, ok := result.(string)
	require.True(t, ok)
	assert.Contains(t, text, "analyze the data")
	assert.Contains(t, text, "raw numbers")
}

func TestStaticCapability(t *testing.T) {
	s := NewStaticCapability().
		AddResponse("known task", "canned result").
		WithFallback("fallback result")

	got, err := s.Execute(context.Background(), "known task", nil)
	require.NoError(t, err)
	assert.Equal(t, "canned result", got)

	got, err = s.Execute(context.Background(), "unknown task", nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback result", got)
}

func TestWebSearchRequestAndResponse(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(SearchResponse{
			Answer: "direct answer",
			Results: []SearchResult{
				{Title: "t1", URL: "https://example.com", Content: "c1"},
			},
		})
	}))
	defer srv.Close()

	ws := NewWebSearch("test-key", func(o *WebSearchOptions) {
		o.BaseURL = srv.URL
		o.MaxResults = 3
	})

	result, err := ws.Execute(context.Background(), "find things", nil)
	require.NoError(t, err)

	resp, ok := result.(SearchResponse)
	require.True(t, ok)
	assert.Equal(t, "direct answer", resp.Answer)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "t1", resp.Results[0].Title)

	assert.Equal(t, "test-key", gotBody["api_key"])
	assert.Equal(t, "find things", gotBody["query"])
	assert.Equal(t, float64(3), gotBody["max_results"])
}

func TestWebSearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ws := NewWebSearch("test-key", func(o *WebSearchOptions) { o.BaseURL = srv.URL })
	_, err := ws.Execute(context.Background(), "q", nil)
	assert.Error(t, err)
}
