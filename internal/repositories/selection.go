package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
)

const selectionColumns = `id, sequence, name, created_at, updated_at, deleted_at`

// SelectionRepository implements models.Repository[*models.Selection].
//
// Track membership lives in selection_tracks; every write replaces the full ordered list inside one transaction.
type SelectionRepository struct {
	db *sql.DB
}

// NewSelectionRepository creates a new SelectionRepository with the given database connection
func NewSelectionRepository(db *sql.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// Create inserts a selection and its track ids
func (r *SelectionRepository) Create(s *models.Selection) error {
	sequence, err := NextSequence(r.db, "selections")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	s.SetID(id)
	s.SetSequence(sequence)

	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO selections (id, sequence, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, sequence, s.Name(), s.CreatedAt(), s.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert selection: %w", err)
	}

	if err := writeSelectionTracks(tx, id, s.TrackIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit selection: %w", err)
	}
	return nil
}

// Get retrieves a selection with its track ids
func (r *SelectionRepository) Get(id string) (*models.Selection, error) {
	query := `SELECT ` + selectionColumns + ` FROM selections WHERE id = ? AND deleted_at IS NULL`
	s, err := r.scan(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return s, r.loadTracks(s)
}

// GetByName retrieves a selection by its unique name
func (r *SelectionRepository) GetByName(name string) (*models.Selection, error) {
	query := `SELECT ` + selectionColumns + ` FROM selections WHERE name = ? AND deleted_at IS NULL`
	s, err := r.scan(r.db.QueryRow(query, name))
	if err != nil {
		return nil, err
	}
	return s, r.loadTracks(s)
}

// Update renames a selection and replaces its track ids
func (r *SelectionRepository) Update(s *models.Selection) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	s.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE selections SET name = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		s.Name(), now, s.ID())
	if err != nil {
		return fmt.Errorf("failed to update selection: %w", err)
	}
	if err := expectOne(result, shared.ErrSelectionNotFound, s.ID()); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM selection_tracks WHERE selection_id = ?`, s.ID()); err != nil {
		return fmt.Errorf("failed to clear selection tracks: %w", err)
	}
	if err := writeSelectionTracks(tx, s.ID(), s.TrackIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit selection: %w", err)
	}
	return nil
}

// Save creates the selection, or replaces the track ids of the one with the same name.
func (r *SelectionRepository) Save(s *models.Selection) error {
	existing, err := r.GetByName(s.Name())
	switch {
	case errors.Is(err, shared.ErrSelectionNotFound):
		return r.Create(s)
	case err != nil:
		return err
	}

	s.SetID(existing.ID())
	s.SetSequence(existing.Sequence())
	s.SetCreatedAt(existing.CreatedAt())
	return r.Update(s)
}

// Delete removes a selection and, through the foreign key cascade, its track ids.
// Selections are removed outright so the name can be reused.
func (r *SelectionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM selections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return expectOne(result, shared.ErrSelectionNotFound, id)
}

// List retrieves every selection in creation order. Supported criteria: "name" (string).
func (r *SelectionRepository) List(criteria map[string]any) ([]*models.Selection, error) {
	query := `SELECT ` + selectionColumns + ` FROM selections WHERE deleted_at IS NULL`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}

	var out []*models.Selection
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, s)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	// track ids are loaded after the cursor is closed; an in-memory database has a single connection
	for _, s := range out {
		if err := r.loadTracks(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SelectionRepository) loadTracks(s *models.Selection) error {
	rows, err := r.db.Query(`SELECT track_id FROM selection_tracks WHERE selection_id = ? ORDER BY position ASC`, s.ID())
	if err != nil {
		return fmt.Errorf("failed to query selection tracks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan selection track: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	s.SetTrackIDs(ids)
	return nil
}

func writeSelectionTracks(tx *sql.Tx, selectionID string, ids []string) error {
	for i, id := range ids {
		_, err := tx.Exec(`INSERT INTO selection_tracks (selection_id, track_id, position) VALUES (?, ?, ?)`,
			selectionID, id, i)
		if err != nil {
			return fmt.Errorf("failed to insert selection track: %w", err)
		}
	}
	return nil
}

func (r *SelectionRepository) scan(s scanner) (*models.Selection, error) {
	var (
		id, name             string
		sequence             int
		createdAt, updatedAt time.Time
		deletedAt            sql.NullTime
	)

	err := s.Scan(&id, &sequence, &name, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSelectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan selection: %w", err)
	}

	sel := models.NewSelection(sequence, name, nil)
	sel.SetID(id)
	sel.SetCreatedAt(createdAt)
	sel.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		sel.SetDeletedAt(&deletedAt.Time)
	}
	return sel, nil
}
