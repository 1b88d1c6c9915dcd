package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/upiexplain/internal/explain"
)

// ErrInvalidInput is returned for missing or malformed tool arguments.
var ErrInvalidInput = errors.New("invalid input")

// maxRelatedLimit caps related_errors so one call cannot dump the catalog.
const maxRelatedLimit = 20

type resolveInput struct {
	Input string `json:"input" jsonschema:"Error code, message, or description as the user typed it"`
}

type resolveOutput struct {
	Input    string `json:"input" jsonschema:"Trimmed input"`
	Found    bool   `json:"found" jsonschema:"Whether a catalog record matched"`
	Slug     string `json:"slug,omitempty" jsonschema:"Slug of the matched record"`
	Code     string `json:"code,omitempty" jsonschema:"Display code of the matched record"`
	Title    string `json:"title,omitempty" jsonschema:"Title of the matched record"`
	Strategy string `json:"strategy" jsonschema:"Matching strategy that succeeded, or none"`
}

type relatedInput struct {
	Slug  string `json:"slug" jsonschema:"Catalog slug, for example u30"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default: 5, max: 20)"`
}

type relatedOutput struct {
	Slug    string                `json:"slug"`
	Related []explain.RelatedLink `json:"related" jsonschema:"Related records, best first"`
}

type explainInput struct {
	Input string `json:"input" jsonschema:"Error code, message, or description to explain"`
}

type explainOutput struct {
	Strategy string        `json:"strategy" jsonschema:"Matching strategy, or none when the AI explained it"`
	Page     *explain.Page `json:"page" jsonschema:"Explanation with reasons, next steps and related errors"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "resolve_error",
		Description: "Resolve a UPI or bank error code, message, or description to a catalog entry.",
	}, s.resolveError)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "related_errors",
		Description: "List catalog errors related to a slug, ranked by shared keywords.",
	}, s.relatedErrors)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "explain_error",
		Description: "Explain a UPI or bank error: what it means, likely reasons, and next steps. Falls back to AI for errors missing from the catalog when configured.",
	}, s.explainError)
}

func (s *Server) resolveError(ctx context.Context, _ *mcp.CallToolRequest, args resolveInput) (res *mcp.CallToolResult, out resolveOutput, err error) {
	done := s.metrics.Track(ctx, "resolve_error")
	defer func() { done(err) }()

	result := s.explain.Search(ctx, args.Input)
	if result.Blank {
		return nil, resolveOutput{}, fmt.Errorf("%w: input is required", ErrInvalidInput)
	}

	out = resolveOutput{Input: result.Input, Found: result.Found, Strategy: string(result.Strategy)}
	text := fmt.Sprintf("No catalog entry matches %q.", result.Input)
	if result.Found {
		out.Slug = result.Slug
		if rec, ok := s.explain.Record(result.Slug); ok {
			out.Code = rec.Code
			out.Title = rec.Title
		}
		text = fmt.Sprintf("%s: %s (slug %s, matched by %s)", out.Code, out.Title, out.Slug, out.Strategy)
	}
	return textResult(text), out, nil
}

func (s *Server) relatedErrors(ctx context.Context, _ *mcp.CallToolRequest, args relatedInput) (res *mcp.CallToolResult, out relatedOutput, err error) {
	done := s.metrics.Track(ctx, "related_errors")
	defer func() { done(err) }()

	slug := strings.ToLower(strings.TrimSpace(args.Slug))
	if slug == "" {
		return nil, relatedOutput{}, fmt.Errorf("%w: slug is required", ErrInvalidInput)
	}
	if args.Limit < 0 {
		return nil, relatedOutput{}, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	limit := min(args.Limit, maxRelatedLimit)

	out = relatedOutput{Slug: slug, Related: s.explain.RelatedTo(ctx, slug, limit)}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors related to %s:", len(out.Related), slug)
	for _, r := range out.Related {
		fmt.Fprintf(&b, "\n- %s: %s (score %d)", r.Code, r.Title, r.Score)
	}
	return textResult(b.String()), out, nil
}

func (s *Server) explainError(ctx context.Context, _ *mcp.CallToolRequest, args explainInput) (res *mcp.CallToolResult, out explainOutput, err error) {
	done := s.metrics.Track(ctx, "explain_error")
	defer func() { done(err) }()

	result := s.explain.Search(ctx, args.Input)
	if result.Blank {
		return nil, explainOutput{}, fmt.Errorf("%w: input is required", ErrInvalidInput)
	}

	// for a miss the trimmed input doubles as the last search
	page, err := s.explain.Page(ctx, result.Slug, result.Input)
	if err != nil {
		s.logger.Debug("explain_error found nothing", zap.String("input", result.Input), zap.Error(err))
		return nil, explainOutput{}, fmt.Errorf("no explanation for %q: %w", result.Input, err)
	}

	out = explainOutput{Strategy: string(result.Strategy), Page: page}
	return textResult(formatPage(page)), out, nil
}

func formatPage(p *explain.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\n%s", p.Code, p.Title, p.Explanation)
	if len(p.Reasons) > 0 {
		b.WriteString("\n\nCommon reasons:")
		for _, r := range p.Reasons {
			b.WriteString("\n- " + r)
		}
	}
	if len(p.NextSteps) > 0 {
		b.WriteString("\n\nWhat to do:")
		for _, step := range p.NextSteps {
			b.WriteString("\n- " + step)
		}
	}
	if p.AIGenerated {
		b.WriteString("\n\n(AI-generated explanation)")
	}
	return b.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
