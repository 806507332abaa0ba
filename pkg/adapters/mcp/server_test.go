package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpadapter "github.com/aretw0/toolhouse/pkg/adapters/mcp"
	"github.com/aretw0/toolhouse/pkg/dice"
	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/registry"
	"github.com/aretw0/toolhouse/pkg/tools/dicetool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type callResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func newServer(t *testing.T) *mcpadapter.Server {
	t.Helper()
	reg := registry.NewRegistry()
	dicetool.New().Register(reg)
	reg.Register(domain.Tool{Name: "catalog", Parameters: map[string]any{"type": "object", "properties": map[string]any{}}},
		func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]any{"items": []string{"a"}}, nil
		})
	reg.Register(domain.Tool{Name: "boom", Parameters: map[string]any{"type": "object", "properties": map[string]any{}}},
		func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("upstream exploded")
		})

	srv, err := mcpadapter.NewServer(reg)
	require.NoError(t, err)
	return srv
}

func call(t *testing.T, srv *mcpadapter.Server, method string, params any) rpcResponse {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	msg := srv.MCPServer().HandleMessage(context.Background(), raw)
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp
}

func callTool(t *testing.T, srv *mcpadapter.Server, name string, args map[string]any) callResult {
	t.Helper()
	resp := call(t, srv, "tools/call", map[string]any{"name": name, "arguments": args})
	require.Nil(t, resp.Error)
	var res callResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	return res
}

func TestServer_ListTools(t *testing.T) {
	srv := newServer(t)
	resp := call(t, srv, "tools/list", map[string]any{})
	require.Nil(t, resp.Error)

	var list struct {
		Tools []struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &list))

	byName := map[string]map[string]any{}
	for _, tool := range list.Tools {
		byName[tool.Name] = tool.InputSchema
	}
	require.Contains(t, byName, dicetool.RollToolName)
	roll := byName[dicetool.RollToolName]
	assert.Equal(t, "object", roll["type"])
	assert.Equal(t, []any{"notation"}, roll["required"])
}

func TestServer_RollDice(t *testing.T) {
	srv := newServer(t)

	res := callTool(t, srv, dicetool.RollToolName, map[string]any{"notation": "2d6", "num_rolls": 3})
	assert.False(t, res.IsError)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Contains(t, strings.ToLower(res.Content[0].Text), "rolled")
	assert.Contains(t, res.Content[0].Text, dice.ReportMarker)
	assert.Contains(t, res.Content[0].Text, "SUMMARY:")
}

func TestServer_ToolErrorsAreResults(t *testing.T) {
	srv := newServer(t)

	res := callTool(t, srv, dicetool.RollToolName, map[string]any{"notation": "2x6"})
	assert.True(t, res.IsError)
	assert.Equal(t, `invalid dice notation "2x6": notation must contain 'd' followed by the number of sides (found "x6")`, res.Content[0].Text)

	res = callTool(t, srv, "boom", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "upstream exploded", res.Content[0].Text)
}

func TestServer_NonStringResultIsJSON(t *testing.T) {
	srv := newServer(t)
	res := callTool(t, srv, "catalog", nil)
	assert.JSONEq(t, `{"items":["a"]}`, res.Content[0].Text)
}

func TestServer_UnknownTool(t *testing.T) {
	srv := newServer(t)
	resp := call(t, srv, "tools/call", map[string]any{"name": "nope", "arguments": map[string]any{}})
	require.NotNil(t, resp.Error)
}

func TestServer_CatalogResource(t *testing.T) {
	srv := newServer(t)
	resp := call(t, srv, "resources/read", map[string]any{"uri": mcpadapter.CatalogURI})
	require.Nil(t, resp.Error)

	var read struct {
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &read))
	require.Len(t, read.Contents, 1)

	var tools []domain.Tool
	require.NoError(t, json.Unmarshal([]byte(read.Contents[0].Text), &tools))
	assert.Len(t, tools, 3)
	assert.Equal(t, "boom", tools[0].Name)
}

func TestServer_HandlerMountsMetrics(t *testing.T) {
	reg := registry.NewRegistry()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "toolhouse_up 1")
	})
	srv, err := mcpadapter.NewServer(reg, mcpadapter.WithMetricsHandler(metrics))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler("http://localhost"))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "toolhouse_up 1", string(body))

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/message", nil)
	opt, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	opt.Body.Close()
	assert.Equal(t, http.StatusOK, opt.StatusCode)
	assert.Equal(t, "*", opt.Header.Get("Access-Control-Allow-Origin"))
}
