package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCatalogLoad marks every failure to build the catalog. It is fatal to the service.
var ErrCatalogLoad = errors.New("catalog load failed")

// Entry validation errors.
var (
	ErrEmptySlug          = errors.New("slug is empty")
	ErrSlugNotLower       = errors.New("slug must be lower case")
	ErrDuplicateSlug      = errors.New("duplicate slug")
	ErrEntryNotObject     = errors.New("entry must be an object")
	ErrFieldType          = errors.New("field has wrong type")
	ErrMalformedSource    = errors.New("source is malformed")
	ErrUnsupportedFormat  = errors.New("unsupported catalog format")
	ErrEmptyCatalogSource = errors.New("catalog source is empty")
)

// LoadError describes why a catalog source could not be loaded.
//
// errors.Is(err, ErrCatalogLoad) holds for every LoadError, as does
// errors.Is against the wrapped cause.
type LoadError struct {
	Source string // file path or source name
	Entry  string // offending slug, empty for source-level failures
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCatalogLoad.Error())
	if e.Source != "" {
		fmt.Fprintf(&b, " (source=%s", e.Source)
		if e.Entry != "" {
			fmt.Fprintf(&b, " entry=%q", e.Entry)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrCatalogLoad, e.Err}
}

func validateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return ErrEmptySlug
	}
	if slug != strings.ToLower(slug) {
		return ErrSlugNotLower
	}
	return nil
}
