package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jmb-server/models"

	"github.com/google/uuid"
)

const jobColumns = `id, title, location, image, description, sort_order, is_active, created_at, updated_at`

func scanJob(row rowScanner) (models.CompletedJob, error) {
	var j models.CompletedJob
	err := row.Scan(&j.ID, &j.Title, &j.Location, &j.Image, &j.Description, &j.SortOrder,
		&j.IsActive, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (db *DB) queryJobs(ctx context.Context, query string, args ...interface{}) ([]models.CompletedJob, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.CompletedJob{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completed job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read completed jobs: %w", err)
	}
	return jobs, nil
}

// ListActiveCompletedJobs returns the public gallery in display order.
func (db *DB) ListActiveCompletedJobs(ctx context.Context) ([]models.CompletedJob, error) {
	return db.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM completed_jobs WHERE is_active = true ORDER BY sort_order ASC, created_at ASC`)
}

func (db *DB) ListCompletedJobs(ctx context.Context) ([]models.CompletedJob, error) {
	return db.queryJobs(ctx, `SELECT `+jobColumns+` FROM completed_jobs ORDER BY sort_order ASC, created_at ASC`)
}

func (db *DB) GetCompletedJob(ctx context.Context, id uuid.UUID) (models.CompletedJob, error) {
	j, err := scanJob(db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM completed_jobs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CompletedJob{}, ErrNotFound
	}
	if err != nil {
		return models.CompletedJob{}, fmt.Errorf("failed to get completed job: %w", err)
	}
	return j, nil
}

// CreateCompletedJob appends a job to the gallery. Its sort order is the
// current job count plus one; deletes are not renumbered.
func (db *DB) CreateCompletedJob(ctx context.Context, j *models.CompletedJob) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	err := db.QueryRowContext(ctx, `
		INSERT INTO completed_jobs (id, title, location, image, description, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, (SELECT COUNT(*) + 1 FROM completed_jobs), $6)
		RETURNING sort_order, created_at, updated_at`,
		j.ID, j.Title, j.Location, j.Image, j.Description, j.IsActive,
	).Scan(&j.SortOrder, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create completed job: %w", err)
	}
	return nil
}

func (db *DB) UpdateCompletedJob(ctx context.Context, j *models.CompletedJob) error {
	err := db.QueryRowContext(ctx, `
		UPDATE completed_jobs
		SET title = $2, location = $3, image = $4, description = $5, sort_order = $6,
		    is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		j.ID, j.Title, j.Location, j.Image, j.Description, j.SortOrder, j.IsActive,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update completed job: %w", err)
	}
	return nil
}

func (db *DB) DeleteCompletedJob(ctx context.Context, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM completed_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete completed job: %w", err)
	}
	return requireAffected(res)
}
