package main

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/sources/catalog"
)

const catalogTimeout = 30 * time.Second

// loadCatalog reads and maps a catalog file or URL.
func loadCatalog(ctx context.Context, source string) ([]*domain.Scholarship, error) {
	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	loader := catalog.NewLoader(source, catalogTimeout)
	file, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	list, err := catalog.NewMapper().Map(file)
	if err != nil {
		return nil, &catalog.ParseError{Source: loader.String(), Err: err}
	}
	return list, nil
}

// parseNow reads a YYYY-MM-DD reference date, defaulting to today.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}
