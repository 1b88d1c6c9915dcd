package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
)

//go:embed data/errors.json
var embeddedErrors []byte

// Source produces a catalog from an external definition.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// Read parses the definition. Any malformed entry fails the whole read.
	Read(ctx context.Context) (*Catalog, error)
}

// EmbeddedSource returns the built-in UPI and banking error catalog.
func EmbeddedSource() Source {
	return NewJSONSource("embedded:errors.json", embeddedErrors)
}

// JSONSource reads a JSON object keyed by slug. Key order is preserved.
type JSONSource struct {
	name string
	data []byte
}

// NewJSONSource creates a JSON source over data.
func NewJSONSource(name string, data []byte) *JSONSource {
	return &JSONSource{name: name, data: data}
}

// Name implements Source.
func (s *JSONSource) Name() string { return s.name }

// Read implements Source.
func (s *JSONSource) Read(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: s.name, Err: err}
	}
	if len(bytes.TrimSpace(s.data)) == 0 {
		return nil, &LoadError{Source: s.name, Err: ErrEmptyCatalogSource}
	}
	if !gjson.ValidBytes(s.data) {
		return nil, &LoadError{Source: s.name, Err: fmt.Errorf("%w: invalid JSON", ErrMalformedSource)}
	}

	root := gjson.ParseBytes(s.data)
	if !root.IsObject() {
		return nil, &LoadError{Source: s.name, Err: fmt.Errorf("%w: top level must be an object", ErrMalformedSource)}
	}

	b := newBuilder(s.name)
	var loadErr error
	root.ForEach(func(key, value gjson.Result) bool {
		slug := key.String()
		if !value.IsObject() {
			loadErr = &LoadError{Source: s.name, Entry: slug, Err: ErrEntryNotObject}
			return false
		}
		fields, _ := value.Value().(map[string]any)
		rec, err := recordFromFields(slug, fields)
		if err != nil {
			loadErr = &LoadError{Source: s.name, Entry: slug, Err: err}
			return false
		}
		if err := b.add(rec); err != nil {
			loadErr = err
			return false
		}
		return true
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return b.build(), nil
}

// TOMLSource reads TOML tables keyed by slug. Table order is preserved.
type TOMLSource struct {
	name string
	data []byte
}

// NewTOMLSource creates a TOML source over data.
func NewTOMLSource(name string, data []byte) *TOMLSource {
	return &TOMLSource{name: name, data: data}
}

// Name implements Source.
func (s *TOMLSource) Name() string { return s.name }

// Read implements Source.
func (s *TOMLSource) Read(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: s.name, Err: err}
	}
	if len(bytes.TrimSpace(s.data)) == 0 {
		return nil, &LoadError{Source: s.name, Err: ErrEmptyCatalogSource}
	}

	var raw map[string]any
	md, err := toml.Decode(string(s.data), &raw)
	if err != nil {
		return nil, &LoadError{Source: s.name, Err: fmt.Errorf("%w: %v", ErrMalformedSource, err)}
	}

	// MetaData.Keys lists keys in document order; top-level keys are the slugs.
	seen := make(map[string]bool)
	b := newBuilder(s.name)
	for _, key := range md.Keys() {
		if len(key) == 0 || seen[key[0]] {
			continue
		}
		slug := key[0]
		seen[slug] = true

		fields, ok := raw[slug].(map[string]any)
		if !ok {
			return nil, &LoadError{Source: s.name, Entry: slug, Err: ErrEntryNotObject}
		}
		rec, err := recordFromFields(slug, fields)
		if err != nil {
			return nil, &LoadError{Source: s.name, Entry: slug, Err: err}
		}
		if err := b.add(rec); err != nil {
			return nil, err
		}
	}
	return b.build(), nil
}

// FileSource reads a catalog file, choosing the format from its extension.
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name implements Source.
func (s *FileSource) Name() string { return s.Path }

// Read implements Source.
func (s *FileSource) Read(ctx context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &LoadError{Source: s.Path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".json":
		return NewJSONSource(s.Path, data).Read(ctx)
	case ".toml":
		return NewTOMLSource(s.Path, data).Read(ctx)
	default:
		return nil, &LoadError{Source: s.Path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(s.Path))}
	}
}

// recordFromFields builds a Record from a decoded entry.
// Absent matching fields are empty; present fields of the wrong type are errors.
func recordFromFields(slug string, fields map[string]any) (Record, error) {
	rec := Record{Slug: slug}
	var err error

	if rec.Code, err = stringField(fields, "code"); err != nil {
		return Record{}, err
	}
	if rec.Title, err = stringField(fields, "title"); err != nil {
		return Record{}, err
	}
	if rec.Explanation, err = stringField(fields, "explanation"); err != nil {
		return Record{}, err
	}
	if rec.Reasons, err = stringListField(fields, "reasons"); err != nil {
		return Record{}, err
	}
	if rec.NextSteps, err = stringListField(fields, "next_steps"); err != nil {
		return Record{}, err
	}
	if rec.Aliases, err = stringListField(fields, "aliases"); err != nil {
		return Record{}, err
	}
	if rec.Scenarios, err = stringListField(fields, "scenarios"); err != nil {
		return Record{}, err
	}

	for k, v := range fields {
		if knownFields[k] {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]any)
		}
		rec.Extra[k] = v
	}
	return rec, nil
}

var knownFields = map[string]bool{
	"slug": true, "code": true, "title": true, "explanation": true,
	"reasons": true, "next_steps": true, "aliases": true, "scenarios": true,
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrFieldType, key, v)
	}
	return s, nil
}

func stringListField(fields map[string]any, key string) ([]string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list, got %T", ErrFieldType, key, v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a string, got %T", ErrFieldType, key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}
