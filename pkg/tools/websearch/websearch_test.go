package websearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/registry"
	"github.com/aretw0/toolhouse/pkg/tools/websearch"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTavily(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req tavilyModels.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)
		assert.Equal(t, "What is capital of France", req.Query)

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<html>upstream down`))
			return
		}

		resp := websearch.SearchResult{
			Results: []tavilyModels.SearchResult{
				{Title: "Test Result", URL: "https://example.com", Content: "Test content", Score: 0.9},
			},
		}
		if req.IncludeAnswer {
			resp.Answer = "Paris"
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestWebSearch_Run(t *testing.T) {
	server := newTavily(t, http.StatusOK)
	tool := websearch.New("testkey").WithBaseURL(server.URL).WithHTTPClient(server.Client())

	res, err := tool.Run(context.Background(), &websearch.SearchRequest{Query: "What is capital of France"})
	require.NoError(t, err)
	assert.Equal(t, "Paris", res.Answer)
	require.Len(t, res.Results, 1)

	exp := "ANSWER: Paris\n" +
		"- URL: https://example.com\n" +
		"  TITLE: Test Result\n" +
		"  SCORE: 0.90\n" +
		"  CONTENT: Test content\n"
	assert.Equal(t, exp, res.String())
}

func TestWebSearch_ThroughRegistry(t *testing.T) {
	server := newTavily(t, http.StatusOK)
	reg := registry.NewRegistry()
	websearch.New("testkey").WithBaseURL(server.URL).WithHTTPClient(server.Client()).Register(reg)

	tool, ok := reg.Lookup(websearch.ToolName)
	require.True(t, ok)
	assert.Equal(t, []any{"query"}, tool.Parameters["required"])

	out, err := reg.Execute(context.Background(), websearch.ToolName, map[string]any{"query": "What is capital of France"})
	require.NoError(t, err)
	assert.Contains(t, out, "ANSWER: Paris")
}

func TestWebSearch_Errors(t *testing.T) {
	tool := websearch.New("testkey")
	_, err := tool.Run(context.Background(), &websearch.SearchRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)

	_, err = websearch.New("").Run(context.Background(), &websearch.SearchRequest{Query: "x"})
	assert.EqualError(t, err, "web search is not configured")

	server := newTavily(t, http.StatusBadGateway)
	tool = websearch.New("testkey").WithBaseURL(server.URL).WithHTTPClient(server.Client())
	_, err = tool.Run(context.Background(), &websearch.SearchRequest{Query: "What is capital of France"})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
