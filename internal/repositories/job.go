package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
)

const jobColumns = `id, sequence, source_path, mode, status, items_total, items_processed, items_unresolved, cost,
	input_units, output_units, error_message, started_at, completed_at, created_at, updated_at, deleted_at`

// JobRepository implements models.Repository[*models.TagJob] for tagging job history.
//
// Handles job CRUD operations with soft delete support and status-based queries.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the given database connection
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new tagging job into the database with generated ID and sequence
func (r *JobRepository) Create(job *models.TagJob) error {
	sequence, err := NextSequence(r.db, "tag_jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	job.SetID(id)
	job.SetSequence(sequence)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO tag_jobs (
			id, sequence, source_path, mode, status, items_total, items_processed, items_unresolved,
			cost, input_units, output_units, error_message, started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		job.SourcePath(),
		job.Mode().String(),
		string(job.Status()),
		job.ItemsTotal(),
		job.ItemsProcessed(),
		job.ItemsUnresolved(),
		job.Cost(),
		job.InputUnits(),
		job.OutputUnits(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// Get retrieves a job by ID, excluding soft-deleted jobs
func (r *JobRepository) Get(id string) (*models.TagJob, error) {
	query := `SELECT ` + jobColumns + ` FROM tag_jobs WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// Update writes the status, counters and usage of a job
func (r *JobRepository) Update(job *models.TagJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE tag_jobs
		SET status = ?, items_total = ?, items_processed = ?, items_unresolved = ?, cost = ?,
			input_units = ?, output_units = ?, error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(job.Status()),
		job.ItemsTotal(),
		job.ItemsProcessed(),
		job.ItemsUnresolved(),
		job.Cost(),
		job.InputUnits(),
		job.OutputUnits(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return expectOne(result, shared.ErrJobNotFound, job.ID())
}

// Delete soft-deletes a job by ID
func (r *JobRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE tag_jobs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return expectOne(result, shared.ErrJobNotFound, id)
}

// List retrieves jobs, most recent first. Supported criteria: "status" and "mode" (strings), "limit" (int).
func (r *JobRepository) List(criteria map[string]any) ([]*models.TagJob, error) {
	query := `SELECT ` + jobColumns + ` FROM tag_jobs WHERE deleted_at IS NULL`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if mode, ok := criteria["mode"].(string); ok && mode != "" {
		query += " AND mode = ?"
		args = append(args, mode)
	}

	query += " ORDER BY started_at DESC, sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.TagJob
	for rows.Next() {
		job, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

func (r *JobRepository) scan(s scanner) (*models.TagJob, error) {
	var (
		id, sourcePath, mode, status string
		sequence                     int
		total, processed, unresolved int
		cost                         float64
		in, out                      int64
		errorMessage                 sql.NullString
		startedAt                    time.Time
		completedAt, deletedAt       sql.NullTime
		createdAt, updatedAt         time.Time
	)

	err := s.Scan(&id, &sequence, &sourcePath, &mode, &status, &total, &processed, &unresolved, &cost, &in, &out,
		&errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	m, err := models.ParseMode(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job := models.NewTagJob(sequence, sourcePath, m)
	job.SetID(id)
	job.SetStatus(models.JobStatus(status))
	job.SetCounts(total, processed, unresolved)
	job.SetUsage(cost, in, out)
	job.SetStartedAt(startedAt)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)
	if errorMessage.Valid {
		job.SetErrorMessage(errorMessage.String)
	}
	if completedAt.Valid {
		job.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		job.SetDeletedAt(&deletedAt.Time)
	}
	return job, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
