// Package sqlite implements the storage contract on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/seoforge/seoforge/internal/storage"
	"github.com/seoforge/seoforge/internal/types"
)

// Store is the SQLite-backed run store.
type Store struct {
	db *sql.DB
}

var _ storage.Storage = (*Store)(nil)

// New opens (creating if needed) the run database at path. WAL mode keeps
// concurrent list/save from blocking each other.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveContent inserts a completed run. The structured fields (metrics,
// references, schema) are stored as JSON columns; everything the list view
// needs is broken out into real columns.
func (s *Store) SaveContent(ctx context.Context, content *types.GeneratedContent) error {
	metrics, err := json.Marshal(content.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	references, err := json.Marshal(content.References)
	if err != nil {
		return fmt.Errorf("failed to marshal references: %w", err)
	}
	schemaJSON, err := json.Marshal(content.Schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generated_content
			(id, keyword, title, seo_title, slug, meta_description, html,
			 word_count, coverage_score, optimization, metrics, refs, schema_json, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		content.ID, content.Keyword, content.Title, content.SEOTitle, content.Slug,
		content.MetaDescription, content.HTML, content.Metrics.WordCount,
		content.CoverageScore, string(content.Optimization),
		string(metrics), string(references), string(schemaJSON),
		content.GeneratedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save content %s: %w", content.ID, err)
	}
	return nil
}

// GetContent loads one run by ID.
func (s *Store) GetContent(ctx context.Context, id string) (*types.GeneratedContent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, keyword, title, seo_title, slug, meta_description, html,
		       coverage_score, optimization, metrics, refs, schema_json, generated_at
		FROM generated_content WHERE id = ?`, id)

	var content types.GeneratedContent
	var optimization, metrics, references, schemaJSON, generatedAt string
	err := row.Scan(&content.ID, &content.Keyword, &content.Title, &content.SEOTitle,
		&content.Slug, &content.MetaDescription, &content.HTML,
		&content.CoverageScore, &optimization, &metrics, &references, &schemaJSON, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load content %s: %w", id, err)
	}

	content.Optimization = types.OptimizationOutcome(optimization)
	if err := json.Unmarshal([]byte(metrics), &content.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(references), &content.References); err != nil {
		return nil, fmt.Errorf("failed to unmarshal references for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(schemaJSON), &content.Schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema for %s: %w", id, err)
	}
	if ts, err := time.Parse(time.RFC3339, generatedAt); err == nil {
		content.GeneratedAt = ts
	}
	return &content, nil
}

// ListContent returns recent runs, newest first.
func (s *Store) ListContent(ctx context.Context, limit int) ([]storage.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keyword, title, slug, word_count, coverage_score, optimization, generated_at
		FROM generated_content
		ORDER BY generated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	var out []storage.RunSummary
	for rows.Next() {
		var sum storage.RunSummary
		var optimization, generatedAt string
		if err := rows.Scan(&sum.ID, &sum.Keyword, &sum.Title, &sum.Slug,
			&sum.WordCount, &sum.CoverageScore, &optimization, &generatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		sum.Optimization = types.OptimizationOutcome(optimization)
		if ts, err := time.Parse(time.RFC3339, generatedAt); err == nil {
			sum.GeneratedAt = ts
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
