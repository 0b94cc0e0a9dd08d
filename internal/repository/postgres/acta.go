package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"sigedoc/internal/domain"
	"sigedoc/internal/domain/models"
)

// PostgresActaRepository implements the ActaRepository interface
type PostgresActaRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewActaRepository creates a new acta repository
func NewActaRepository(config *RepositoryConfig) *PostgresActaRepository {
	return &PostgresActaRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new acta
func (r *PostgresActaRepository) Create(ctx context.Context, acta *models.Acta) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, summary, meeting_at, created_by, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, r.tables.Actas)

	err := r.pool.QueryRow(ctx, query,
		acta.ID,
		acta.Title,
		acta.Summary,
		acta.MeetingAt,
		acta.CreatedBy,
		acta.Status,
	).Scan(&acta.CreatedAt, &acta.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("acta %s: %w", acta.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create acta: %w", err)
	}

	return nil
}

// GetByID retrieves an acta by ID
func (r *PostgresActaRepository) GetByID(ctx context.Context, id string) (*models.Acta, error) {
	query := fmt.Sprintf(`
		SELECT id, title, summary, meeting_at, created_by, status, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Actas)

	var acta models.Acta
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&acta.ID,
		&acta.Title,
		&acta.Summary,
		&acta.MeetingAt,
		&acta.CreatedBy,
		&acta.Status,
		&acta.CreatedAt,
		&acta.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("acta %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get acta: %w", err)
	}

	return &acta, nil
}

// List retrieves all actas, newest meeting first
func (r *PostgresActaRepository) List(ctx context.Context) ([]models.Acta, error) {
	query := fmt.Sprintf(`
		SELECT id, title, summary, meeting_at, created_by, status, created_at, updated_at
		FROM %s
		ORDER BY meeting_at DESC
	`, r.tables.Actas)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list actas: %w", err)
	}
	defer rows.Close()

	var actas []models.Acta
	for rows.Next() {
		var acta models.Acta
		err := rows.Scan(
			&acta.ID,
			&acta.Title,
			&acta.Summary,
			&acta.MeetingAt,
			&acta.CreatedBy,
			&acta.Status,
			&acta.CreatedAt,
			&acta.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan acta: %w", err)
		}
		actas = append(actas, acta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actas: %w", err)
	}

	// Return empty slice instead of nil
	if actas == nil {
		actas = []models.Acta{}
	}

	return actas, nil
}

// UpdateStatus transitions an acta's status. Only rows whose current
// status is in the allowed source set are updated, so archived stays
// terminal regardless of caller behavior.
func (r *PostgresActaRepository) UpdateStatus(ctx context.Context, id string, from []models.Status, to models.Status) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`, r.tables.Actas)

	result, err := r.pool.Exec(ctx, query, to, id, statusStrings(from))
	if err != nil {
		return fmt.Errorf("update acta status: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("acta %s: status transition to %s: %w", id, to, domain.ErrConflict)
	}

	return nil
}

// Delete removes an acta
func (r *PostgresActaRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Actas)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete acta: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("acta %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
