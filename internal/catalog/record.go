package catalog

// Record is a single canonical error entry.
//
// Slug, Code, Aliases and Scenarios drive matching. The remaining fields are
// display payload and are passed through unchanged.
type Record struct {
	Slug        string         `json:"slug"`
	Code        string         `json:"code"`
	Title       string         `json:"title"`
	Explanation string         `json:"explanation"`
	Reasons     []string       `json:"reasons"`
	NextSteps   []string       `json:"next_steps"`
	Aliases     []string       `json:"aliases"`
	Scenarios   []string       `json:"scenarios"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Catalog is an ordered, read-only mapping from slug to Record.
//
// Iteration order is the insertion order of the definition source.
type Catalog struct {
	slugs   []string
	records map[string]Record
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.slugs)
}

// Slugs returns the slugs in catalog order.
func (c *Catalog) Slugs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.slugs))
	copy(out, c.slugs)
	return out
}

// Get returns the record stored under slug. The slug must already be lower case.
func (c *Catalog) Get(slug string) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	r, ok := c.records[slug]
	return r, ok
}

// Each calls fn for every record in catalog order until fn returns false.
func (c *Catalog) Each(fn func(r Record) bool) {
	if c == nil {
		return
	}
	for _, slug := range c.slugs {
		if !fn(c.records[slug]) {
			return
		}
	}
}

// Records returns all records in catalog order.
func (c *Catalog) Records() []Record {
	out := make([]Record, 0, c.Len())
	c.Each(func(r Record) bool {
		out = append(out, r)
		return true
	})
	return out
}

// builder accumulates records while a source is parsed.
type builder struct {
	source string
	cat    *Catalog
}

func newBuilder(source string) *builder {
	return &builder{
		source: source,
		cat:    &Catalog{records: make(map[string]Record)},
	}
}

func (b *builder) add(r Record) error {
	if err := validateSlug(r.Slug); err != nil {
		return &LoadError{Source: b.source, Entry: r.Slug, Err: err}
	}
	if _, dup := b.cat.records[r.Slug]; dup {
		return &LoadError{Source: b.source, Entry: r.Slug, Err: ErrDuplicateSlug}
	}
	b.cat.slugs = append(b.cat.slugs, r.Slug)
	b.cat.records[r.Slug] = r
	return nil
}

func (b *builder) build() *Catalog {
	return b.cat
}
