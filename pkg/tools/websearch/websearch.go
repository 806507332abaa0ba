// Package websearch provides the web_search tool backed by the Tavily API.
package websearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/registry"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
)

const ToolName = "web_search"

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" jsonschema_description:"The query to search the web for"`
}

// SearchResult represents the structure for a search response
type SearchResult struct {
	Results []tavilyModels.SearchResult `json:"results"`
	Answer  string                      `json:"answer,omitempty"`
}

// Tool provides web search through Tavily.
type Tool struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates the tool. The caller registers it only when an API key is
// configured.
func New(apiKey string) *Tool {
	return &Tool{
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

// Register adds web_search to reg.
func (t *Tool) Register(reg *registry.Registry) {
	reg.Register(
		registry.Define[SearchRequest](ToolName, "Search the web for information about the given query"),
		registry.Typed(func(ctx context.Context, in *SearchRequest) (any, error) {
			res, err := t.Run(ctx, in)
			if err != nil {
				return nil, err
			}
			return res.String(), nil
		}),
	)
}

// Run performs the search.
func (t *Tool) Run(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArguments)
	}
	if t.apiKey == "" {
		return nil, errors.New("web search is not configured")
	}

	client := tavilygo.NewClient(t.apiKey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL
	}
	if t.httpClient != nil {
		client.HTTPClient = t.httpClient
	}

	searchResp, err := tavilygo.Search(client, tavilyModels.SearchRequest{
		Query:         req.Query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to perform search: %v", domain.ErrUpstream, err)
	}

	return &SearchResult{
		Results: searchResp.Results,
		Answer:  searchResp.Answer,
	}, nil
}

func (r *SearchResult) String() string {
	var buf bytes.Buffer
	if r.Answer != "" {
		fmt.Fprintf(&buf, "ANSWER: %s\n", r.Answer)
	}
	if len(r.Results) == 0 {
		buf.WriteString("No results found.\n")
	}

	for _, result := range r.Results {
		fmt.Fprintf(&buf, "- URL: %s\n", result.URL)
		fmt.Fprintf(&buf, "  TITLE: %s\n", result.Title)
		fmt.Fprintf(&buf, "  SCORE: %.2f\n", result.Score)
		fmt.Fprintf(&buf, "  CONTENT: %s\n", result.Content)
	}

	return buf.String()
}
