package catalog

import (
	"fmt"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

// FetchError reports an unreachable source or a non-success status.
type FetchError struct {
	Source string
	Status int // HTTP status, 0 for transport and file errors
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch catalog %s: unexpected status %d", e.Source, e.Status)
	}
	return fmt.Sprintf("fetch catalog %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes every FetchError match domain.ErrCatalogUnavailable.
func (e *FetchError) Is(target error) bool { return target == domain.ErrCatalogUnavailable }

// ParseError reports a payload that is not a well-formed catalog.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse catalog %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes every ParseError match domain.ErrCatalogUnavailable.
func (e *ParseError) Is(target error) bool { return target == domain.ErrCatalogUnavailable }
