package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/fyrsmithlabs/upiexplain/internal/catalog"
	"github.com/fyrsmithlabs/upiexplain/internal/explain"
	"github.com/fyrsmithlabs/upiexplain/internal/explainer"
	"github.com/fyrsmithlabs/upiexplain/internal/resolver"
)

type stubAI struct{ exp *explainer.Explanation }

func (s stubAI) Explain(context.Context, string) (*explainer.Explanation, bool) {
	return s.exp, s.exp != nil
}

func (s stubAI) Available() bool { return s.exp != nil }

func newTestService(t *testing.T, ai explainer.Explainer) *explain.Service {
	t.Helper()
	store, err := catalog.NewStore(catalog.EmbeddedSource(), nil)
	require.NoError(t, err)
	engine, err := resolver.NewEngine(store, nil)
	require.NoError(t, err)
	svc, err := explain.NewService(store, engine, ai, nil)
	require.NoError(t, err)
	return svc
}

// connect starts a server over in-memory transports and returns a client session.
func connect(t *testing.T, ai explainer.Explainer) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	srv, err := NewServer(&Config{
		Name:    "upiexplain-test",
		Metrics: newMetrics(mp.Meter(instrumentationName), nil),
	}, newTestService(t, ai))
	require.NoError(t, err)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

// structured decodes a result's structured content into out.
func structured(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, res.IsError, "tool returned an error: %+v", res.Content)
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func text(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.ErrorContains(t, err, "explain service is required")

	srv, err := NewServer(nil, newTestService(t, nil))
	require.NoError(t, err)
	assert.NotNil(t, srv.metrics)
	assert.NotNil(t, srv.logger)
}

func TestListTools(t *testing.T) {
	cs := connect(t, nil)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"resolve_error", "related_errors", "explain_error"}, names)
}

func TestResolveError(t *testing.T) {
	cs := connect(t, nil)

	t.Run("alias", func(t *testing.T) {
		var out resolveOutput
		structured(t, call(t, cs, "resolve_error", map[string]any{"input": " Wrong PIN "}), &out)
		assert.Equal(t, resolveOutput{
			Input: "Wrong PIN", Found: true, Slug: "zm", Code: "ZM",
			Title: out.Title, Strategy: string(resolver.StrategyAlias),
		}, out)
		assert.NotEmpty(t, out.Title)
	})

	t.Run("no match", func(t *testing.T) {
		res := call(t, cs, "resolve_error", map[string]any{"input": "totally-unrelated-xyz-123"})
		var out resolveOutput
		structured(t, res, &out)
		assert.False(t, out.Found)
		assert.Empty(t, out.Slug)
		assert.Equal(t, string(resolver.StrategyNone), out.Strategy)
		assert.Contains(t, text(res), "No catalog entry")
	})

	t.Run("blank input", func(t *testing.T) {
		res := call(t, cs, "resolve_error", map[string]any{"input": "  "})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "input is required")
	})
}

func TestRelatedErrors(t *testing.T) {
	cs := connect(t, nil)

	var out relatedOutput
	structured(t, call(t, cs, "related_errors", map[string]any{"slug": "ZM", "limit": 3}), &out)
	assert.Equal(t, "zm", out.Slug)
	require.Len(t, out.Related, 3)
	assert.Equal(t, "z6", out.Related[0].Slug)

	structured(t, call(t, cs, "related_errors", map[string]any{"slug": "zm"}), &out)
	assert.Len(t, out.Related, resolver.DefaultRelatedLimit)

	res := call(t, cs, "related_errors", map[string]any{"slug": ""})
	assert.True(t, res.IsError)
}

func TestExplainError(t *testing.T) {
	t.Run("catalog", func(t *testing.T) {
		cs := connect(t, nil)
		res := call(t, cs, "explain_error", map[string]any{"input": "u30"})
		var out explainOutput
		structured(t, res, &out)
		require.NotNil(t, out.Page)
		assert.Equal(t, "U30", out.Page.Code)
		assert.False(t, out.Page.AIGenerated)
		assert.Equal(t, string(resolver.StrategySlug), out.Strategy)
		assert.Contains(t, text(res), "U30: ")
	})

	t.Run("ai fallback", func(t *testing.T) {
		cs := connect(t, stubAI{exp: &explainer.Explanation{
			Title:       "Unknown Bank Response",
			Explanation: "The bank replied with a code we do not know.",
			Reasons:     []string{"Bank maintenance"},
			NextSteps:   []string{"Retry later"},
		}})
		res := call(t, cs, "explain_error", map[string]any{"input": "qz77"})
		var out explainOutput
		structured(t, res, &out)
		assert.True(t, out.Page.AIGenerated)
		assert.Equal(t, "QZ77", out.Page.Code)
		assert.Contains(t, text(res), "AI-generated")
	})

	t.Run("nothing explains it", func(t *testing.T) {
		cs := connect(t, nil)
		res := call(t, cs, "explain_error", map[string]any{"input": "qz77"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "qz77")
	})
}
