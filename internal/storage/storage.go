// Package storage persists completed generation runs so past articles can be
// listed, inspected, and republished without regenerating them.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/seoforge/seoforge/internal/types"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("content not found")

// RunSummary is the listing row for a stored run; the full HTML stays out of
// list queries.
type RunSummary struct {
	ID            string
	Keyword       string
	Title         string
	Slug          string
	WordCount     int
	CoverageScore float64
	Optimization  types.OptimizationOutcome
	GeneratedAt   time.Time
}

// Storage is the persistence contract for generation runs.
type Storage interface {
	SaveContent(ctx context.Context, content *types.GeneratedContent) error
	GetContent(ctx context.Context, id string) (*types.GeneratedContent, error)
	ListContent(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}
