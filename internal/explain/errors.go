package explain

import (
	"errors"
	"fmt"
)

// ErrNotFound means neither the catalog nor the AI fallback could explain a slug.
var ErrNotFound = errors.New("explanation not found")

// NotFoundError carries whether the miss followed a search, which lets
// callers tell "your search matched nothing" apart from a stale link.
type NotFoundError struct {
	Slug     string
	Searched bool
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.Slug)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
