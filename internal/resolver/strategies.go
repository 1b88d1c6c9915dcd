package resolver

import (
	"strings"

	"github.com/fyrsmithlabs/upiexplain/internal/catalog"
)

// Strategy names one step of the matching cascade.
type Strategy string

// Cascade steps, in precedence order.
const (
	StrategySlug          Strategy = "slug"
	StrategyCode          Strategy = "code"
	StrategyAlias         Strategy = "alias"
	StrategyCodeSubstring Strategy = "code_substring"
	StrategyAliasOverlap  Strategy = "alias_overlap"
	StrategyScenario      Strategy = "scenario"

	// StrategyNone is reported when nothing matched.
	StrategyNone Strategy = "none"
)

// query is the normalized user input.
type query struct {
	lower string
	upper string
}

func newQuery(raw string) query {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return query{lower: lower, upper: strings.ToUpper(lower)}
}

// strategy returns the slug of the first record in catalog order that it accepts.
type strategy struct {
	name  Strategy
	match func(q query, cat *catalog.Catalog) (string, bool)
}

// cascade is tried in order; the first strategy that matches wins, even when a
// later one would match a different record.
var cascade = []strategy{
	{name: StrategySlug, match: matchSlug},
	{name: StrategyCode, match: firstRecord(func(q query, r catalog.Record) bool {
		return strings.ToUpper(r.Code) == q.upper
	})},
	{name: StrategyAlias, match: firstRecord(func(q query, r catalog.Record) bool {
		return anyString(r.Aliases, func(alias string) bool {
			return strings.ToLower(alias) == q.lower
		})
	})},
	{name: StrategyCodeSubstring, match: firstRecord(func(q query, r catalog.Record) bool {
		code := strings.ToUpper(r.Code)
		return code != "" && strings.Contains(q.upper, code)
	})},
	{name: StrategyAliasOverlap, match: firstRecord(func(q query, r catalog.Record) bool {
		return anyString(r.Aliases, func(alias string) bool {
			alias = strings.ToLower(alias)
			return strings.Contains(q.lower, alias) || strings.Contains(alias, q.lower)
		})
	})},
	{name: StrategyScenario, match: firstRecord(func(q query, r catalog.Record) bool {
		return anyString(r.Scenarios, func(scenario string) bool {
			return strings.Contains(strings.ToLower(scenario), q.lower)
		})
	})},
}

func matchSlug(q query, cat *catalog.Catalog) (string, bool) {
	if _, ok := cat.Get(q.lower); ok {
		return q.lower, true
	}
	return "", false
}

// firstRecord adapts a per-record predicate into a catalog-order scan.
func firstRecord(accept func(q query, r catalog.Record) bool) func(query, *catalog.Catalog) (string, bool) {
	return func(q query, cat *catalog.Catalog) (string, bool) {
		var slug string
		cat.Each(func(r catalog.Record) bool {
			if accept(q, r) {
				slug = r.Slug
				return false
			}
			return true
		})
		return slug, slug != ""
	}
}

func anyString(items []string, pred func(string) bool) bool {
	for _, s := range items {
		if pred(s) {
			return true
		}
	}
	return false
}
