// Package explain turns searches and slugs into explanation pages.
//
// It sits between the transports (HTTP, MCP) and the core packages: the
// resolver finds catalog records, and the AI explainer covers text the
// catalog does not know.
package explain

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/upiexplain/internal/catalog"
	"github.com/fyrsmithlabs/upiexplain/internal/explainer"
	"github.com/fyrsmithlabs/upiexplain/internal/resolver"
)

// NotFoundSlug is the pseudo-slug a search redirects to when nothing matched.
const NotFoundSlug = "not-found"

// SearchResult is the outcome of Search.
type SearchResult struct {
	Input    string // trimmed input
	Slug     string // matched slug, or NotFoundSlug
	Strategy resolver.Strategy
	Found    bool
	Blank    bool
}

// RelatedLink is a short reference to a related record.
type RelatedLink struct {
	Slug  string `json:"slug"`
	Code  string `json:"code"`
	Title string `json:"title"`
	Score int    `json:"score"`
}

// Page is everything needed to render one explanation.
type Page struct {
	Slug        string        `json:"slug"`
	Code        string        `json:"code"`
	Title       string        `json:"title"`
	Explanation string        `json:"explanation"`
	Reasons     []string      `json:"reasons"`
	NextSteps   []string      `json:"next_steps"`
	Related     []RelatedLink `json:"related"`
	AIGenerated bool          `json:"ai_generated"`
	LastUpdated string        `json:"last_updated"`
}

// Service builds explanation pages.
type Service struct {
	catalog      resolver.CatalogReader
	engine       *resolver.Engine
	ai           explainer.Explainer
	logger       *zap.Logger
	relatedLimit int
	lastUpdated  string
}

// Option configures a Service.
type Option func(*Service)

// WithRelatedLimit sets how many related records a page lists.
func WithRelatedLimit(n int) Option {
	return func(s *Service) { s.relatedLimit = n }
}

// WithLastUpdated sets the catalog revision label shown on pages.
func WithLastUpdated(label string) Option {
	return func(s *Service) { s.lastUpdated = label }
}

// NewService creates a service. A nil explainer disables the AI fallback.
func NewService(cat resolver.CatalogReader, engine *resolver.Engine, ai explainer.Explainer, logger *zap.Logger, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, errors.New("catalog is required for explain service")
	}
	if engine == nil {
		return nil, errors.New("resolver engine is required for explain service")
	}
	if ai == nil {
		ai = explainer.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		catalog:      cat,
		engine:       engine,
		ai:           ai,
		logger:       logger,
		relatedLimit: resolver.DefaultRelatedLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AIAvailable reports whether the AI fallback is configured.
func (s *Service) AIAvailable() bool {
	return s.ai.Available()
}

// Search resolves free-text input. Blank input is flagged rather than resolved.
func (s *Service) Search(ctx context.Context, input string) SearchResult {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return SearchResult{Blank: true, Strategy: resolver.StrategyNone}
	}

	m := s.engine.Resolve(ctx, trimmed)
	res := SearchResult{Input: trimmed, Strategy: m.Strategy, Found: m.Found, Slug: NotFoundSlug}
	if m.Found {
		res.Slug = m.Slug
	}
	return res
}

// Page builds the page for slug.
//
// For NotFoundSlug the AI fallback is asked about lastSearch. For an unknown
// slug it is asked about the slug itself. AI pages carry the upper-cased text
// as their code. When nothing can explain the slug the error is a
// *NotFoundError wrapping ErrNotFound.
func (s *Service) Page(ctx context.Context, slug, lastSearch string) (*Page, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))

	if slug == NotFoundSlug {
		lastSearch = strings.TrimSpace(lastSearch)
		if lastSearch != "" {
			if exp, ok := s.ai.Explain(ctx, lastSearch); ok {
				return s.aiPage(ctx, slug, lastSearch, exp), nil
			}
		}
		return nil, &NotFoundError{Slug: slug, Searched: true}
	}

	if rec, ok := s.catalog.All().Get(slug); ok {
		return s.recordPage(ctx, rec), nil
	}

	if slug != "" {
		if exp, ok := s.ai.Explain(ctx, slug); ok {
			return s.aiPage(ctx, slug, slug, exp), nil
		}
	}
	s.logger.Debug("no explanation for slug", zap.String("slug", slug))
	return nil, &NotFoundError{Slug: slug}
}

// Index returns every catalog record in catalog order.
func (s *Service) Index() []catalog.Record {
	return s.catalog.All().Records()
}

// Record looks up a catalog record by slug, ignoring case.
func (s *Service) Record(slug string) (catalog.Record, bool) {
	return s.catalog.All().Get(strings.ToLower(strings.TrimSpace(slug)))
}

// RelatedTo lists records related to slug, at most limit of them.
func (s *Service) RelatedTo(ctx context.Context, slug string, limit int) []RelatedLink {
	if limit <= 0 {
		limit = s.relatedLimit
	}
	ranked := s.engine.Related(ctx, slug, limit)
	links := make([]RelatedLink, len(ranked))
	for i, r := range ranked {
		links[i] = RelatedLink{Slug: r.Slug, Code: r.Record.Code, Title: r.Record.Title, Score: r.Score}
	}
	return links
}

func (s *Service) recordPage(ctx context.Context, rec catalog.Record) *Page {
	return &Page{
		Slug:        rec.Slug,
		Code:        rec.Code,
		Title:       rec.Title,
		Explanation: rec.Explanation,
		Reasons:     nonNil(rec.Reasons),
		NextSteps:   nonNil(rec.NextSteps),
		Related:     s.RelatedTo(ctx, rec.Slug, s.relatedLimit),
		LastUpdated: s.lastUpdated,
	}
}

func (s *Service) aiPage(ctx context.Context, slug, asked string, exp *explainer.Explanation) *Page {
	return &Page{
		Slug:        slug,
		Code:        strings.ToUpper(asked),
		Title:       exp.Title,
		Explanation: exp.Explanation,
		Reasons:     nonNil(exp.Reasons),
		NextSteps:   nonNil(exp.NextSteps),
		Related:     s.RelatedTo(ctx, slug, s.relatedLimit),
		AIGenerated: true,
		LastUpdated: s.lastUpdated,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
