// Package resolver maps noisy user input to a single catalog record and ranks
// related records.
//
// # Resolution cascade
//
// Resolve normalizes the input (trim, case-fold) and walks an ordered list of
// strategies against the whole catalog. The first strategy that yields any
// match wins; later strategies are never consulted. Exactness is preferred over
// recall, so an exact alias beats a code that happens to appear inside the text.
//
// Within one strategy the first record in catalog order wins. There is no
// scoring inside a strategy.
//
// Short codes can match inside unrelated text during the substring steps
// (a two-letter code inside a longer word). That behavior is kept as is.
//
// # Related records
//
// Related scores every other record by the number of alias keywords it shares
// with the current record, after removing domain filler words. The ranking is
// stable and padded with zero-score records, so a page always has suggestions.
//
// # Usage
//
//	engine, err := resolver.NewEngine(store, logger)
//	if err != nil {
//	    return err
//	}
//	m := engine.Resolve(ctx, "  declined by bank ")
//	if !m.Found {
//	    // fall back to the AI explainer
//	}
//	related := engine.Related(ctx, m.Slug, resolver.DefaultRelatedLimit)
package resolver
