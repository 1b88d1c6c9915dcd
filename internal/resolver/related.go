package resolver

import (
	"sort"
	"strings"

	"github.com/fyrsmithlabs/upiexplain/internal/catalog"
)

// DefaultRelatedLimit is used when Related is called with a non-positive limit.
const DefaultRelatedLimit = 5

// stopWords are dropped from alias keywords before overlap scoring.
var stopWords = map[string]struct{}{
	"upi": {}, "error": {}, "the": {}, "a": {}, "an": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "by": {}, "on": {}, "in": {}, "not": {},
}

// Related is one entry of a related-records ranking.
type Related struct {
	Slug   string
	Record catalog.Record
	Score  int // number of shared alias keywords
}

// rankRelated scores every record other than current by alias keyword overlap.
//
// The result is sorted by score descending with ties in catalog order, and is
// padded with zero-score records so it only runs short when the catalog does.
func rankRelated(cat *catalog.Catalog, current string, limit int) []Related {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	var currentKeywords map[string]struct{}
	if rec, ok := cat.Get(current); ok {
		currentKeywords = keywords(rec.Aliases)
	}

	scored := make([]Related, 0, cat.Len())
	cat.Each(func(r catalog.Record) bool {
		if r.Slug == current {
			return true
		}
		scored = append(scored, Related{
			Slug:   r.Slug,
			Record: r,
			Score:  overlap(currentKeywords, keywords(r.Aliases)),
		})
		return true
	})

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// keywords lower-cases and splits every alias on whitespace, minus stop words.
func keywords(aliases []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, alias := range aliases {
		for _, token := range strings.Fields(strings.ToLower(alias)) {
			if _, stop := stopWords[token]; stop {
				continue
			}
			set[token] = struct{}{}
		}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
