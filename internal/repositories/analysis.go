package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
)

const analysisColumns = `id, sequence, fingerprint, mood, sub_genre, main_genre, situation, year, tag_string, strategy,
	created_at, updated_at, deleted_at`

// AnalysisRepository implements models.Repository[*models.CachedAnalysis] for the tagging result cache.
//
// Rows are unique by fingerprint, so a result fetched for one copy of a track serves every copy.
type AnalysisRepository struct {
	db *sql.DB
}

// NewAnalysisRepository creates a new AnalysisRepository with the given database connection
func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create inserts a new [models.CachedAnalysis] into the database with generated ID and sequence
func (r *AnalysisRepository) Create(c *models.CachedAnalysis) error {
	sequence, err := NextSequence(r.db, "analyses")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	c.SetID(id)
	c.SetSequence(sequence)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	a := c.Analysis()
	query := `
		INSERT INTO analyses (id, sequence, fingerprint, mood, sub_genre, main_genre, situation, year, tag_string, strategy,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		c.Fingerprint(),
		a.Mood,
		a.SubGenre,
		a.MainGenre,
		a.Situation,
		a.Year,
		a.TagString,
		c.Strategy().String(),
		c.CreatedAt(),
		c.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	return nil
}

// Get retrieves an analysis by ID, excluding soft-deleted rows
func (r *AnalysisRepository) Get(id string) (*models.CachedAnalysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByFingerprint retrieves the cached analysis for an artist/title fingerprint
func (r *AnalysisRepository) GetByFingerprint(fingerprint string) (*models.CachedAnalysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE fingerprint = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, fingerprint))
}

// Update replaces the stored analysis and strategy
func (r *AnalysisRepository) Update(c *models.CachedAnalysis) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	c.SetUpdatedAt(now)
	a := c.Analysis()

	query := `
		UPDATE analyses
		SET mood = ?, sub_genre = ?, main_genre = ?, situation = ?, year = ?, tag_string = ?, strategy = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		a.Mood, a.SubGenre, a.MainGenre, a.Situation, a.Year, a.TagString, c.Strategy().String(), now, c.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}
	return expectOne(result, shared.ErrAnalysisNotFound, c.ID())
}

// Delete removes a cached analysis by ID.
//
// The row is removed outright rather than soft-deleted: the fingerprint is unique and a later job must be able to
// cache it again.
func (r *AnalysisRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return expectOne(result, shared.ErrAnalysisNotFound, id)
}

// List retrieves cached analyses. Supported criteria: "strategy" and "main_genre" (strings).
func (r *AnalysisRepository) List(criteria map[string]any) ([]*models.CachedAnalysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE deleted_at IS NULL`
	args := []any{}

	if strategy, ok := criteria["strategy"].(string); ok && strategy != "" {
		query += " AND strategy = ?"
		args = append(args, strategy)
	}
	if genre, ok := criteria["main_genre"].(string); ok && genre != "" {
		query += " AND main_genre = ?"
		args = append(args, genre)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var out []*models.CachedAnalysis
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return out, nil
}

// Count returns the number of cached analyses.
func (r *AnalysisRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM analyses WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return n, nil
}

func (r *AnalysisRepository) scan(s scanner) (*models.CachedAnalysis, error) {
	var (
		id, fingerprint, strategy string
		sequence                  int
		a                         models.Analysis
		createdAt, updatedAt      time.Time
		deletedAt                 sql.NullTime
	)

	err := s.Scan(&id, &sequence, &fingerprint, &a.Mood, &a.SubGenre, &a.MainGenre, &a.Situation, &a.Year, &a.TagString,
		&strategy, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	c := models.NewCachedAnalysis(sequence, fingerprint, a, models.ParseStrategy(strategy))
	c.SetID(id)
	c.SetCreatedAt(createdAt)
	c.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		c.SetDeletedAt(&deletedAt.Time)
	}
	return c, nil
}
