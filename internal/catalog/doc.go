// Package catalog loads and serves the immutable UPI and banking error catalog.
//
// # Sources
//
// A catalog is read from a Source:
//   - EmbeddedSource: the dataset compiled into the binary
//   - JSONSource: a JSON object keyed by slug
//   - TOMLSource: TOML tables keyed by slug
//   - FileSource: a .json or .toml file on disk
//
// Entry order in the source is the catalog order. Matching and ranking break
// ties by this order, so sources keep it exactly.
//
// # Loading
//
//	store, err := catalog.NewStore(catalog.EmbeddedSource(), logger)
//	if err != nil {
//	    return err
//	}
//	if _, err := store.Load(ctx); err != nil {
//	    return err // fatal: no catalog, no service
//	}
//	rec, ok := store.BySlug("U28")
//
// A malformed entry fails the whole load. Missing code, aliases or scenarios
// are treated as empty.
package catalog
