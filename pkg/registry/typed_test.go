package registry

import (
	"context"
	"testing"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchArgs struct {
	Query string `json:"query" jsonschema_description:"Search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=10" jsonschema_description:"Maximum results"`
}

type noArgs struct{}

func TestDefine_ReflectsSchema(t *testing.T) {
	tool := Define[searchArgs]("search", "Search things")
	assert.Equal(t, "search", tool.Name)
	assert.Equal(t, "Search things", tool.Description)

	params := tool.Parameters
	assert.Equal(t, "object", params["type"])
	assert.NotContains(t, params, "$schema")
	assert.Equal(t, []any{"query"}, params["required"])

	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "query")
	require.Contains(t, props, "limit")

	query := props["query"].(map[string]any)
	assert.Equal(t, "string", query["type"])
	assert.Equal(t, "Search query", query["description"])

	limit := props["limit"].(map[string]any)
	assert.Equal(t, "integer", limit["type"])
	assert.EqualValues(t, 10, limit["maximum"])
}

func TestDefine_EmptyArgs(t *testing.T) {
	tool := Define[noArgs]("status", "Status")
	assert.Equal(t, "object", tool.Parameters["type"])
	assert.Contains(t, tool.Parameters, "properties")
}

func TestTyped_DecodesArguments(t *testing.T) {
	var got searchArgs
	fn := Typed(func(ctx context.Context, in *searchArgs) (any, error) {
		got = *in
		return "ok", nil
	})

	out, err := fn(context.Background(), map[string]any{"query": "go", "limit": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, searchArgs{Query: "go", Limit: 3}, got)

	// Numeric strings are accepted.
	_, err = fn(context.Background(), map[string]any{"query": "go", "limit": "4"})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Limit)

	_, err = fn(context.Background(), map[string]any{"query": "go", "limit": []int{1}})
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)
}
