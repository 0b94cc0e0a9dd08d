package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"sigedoc/internal/domain"
	"sigedoc/internal/domain/models"
	"sigedoc/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository and
// CodeGenerator interfaces. Document+version creation and code
// generation go through server-side functions so atomicity and global
// code uniqueness live in one place.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, code, name, objective, scope, document_type_id, process_id,
       responsible_user_id, created_by, status, current_version, file_path, file_name,
       created_at, updated_at`

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, documentColumns, r.tables.Documents)

	var doc models.Document
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Code,
		&doc.Name,
		&doc.Objective,
		&doc.Scope,
		&doc.TypeID,
		&doc.ProcessID,
		&doc.ResponsibleUserID,
		&doc.CreatedBy,
		&doc.Status,
		&doc.CurrentVersion,
		&doc.FilePath,
		&doc.FileName,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// List retrieves all documents, newest first
func (r *PostgresDocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY created_at DESC
	`, documentColumns, r.tables.Documents)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.Code,
			&doc.Name,
			&doc.Objective,
			&doc.Scope,
			&doc.TypeID,
			&doc.ProcessID,
			&doc.ResponsibleUserID,
			&doc.CreatedBy,
			&doc.Status,
			&doc.CurrentVersion,
			&doc.FilePath,
			&doc.FileName,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	// Return empty slice instead of nil
	if documents == nil {
		documents = []models.Document{}
	}

	return documents, nil
}

// ListVersions retrieves all versions of a document, newest first
func (r *PostgresDocumentRepository) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT document_id, version_number, file_path, file_name, file_size, mime_type, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY version_number DESC
	`, r.tables.DocumentVersions)

	rows, err := r.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document versions: %w", err)
	}
	defer rows.Close()

	var versions []models.DocumentVersion
	for rows.Next() {
		var v models.DocumentVersion
		err := rows.Scan(
			&v.DocumentID,
			&v.VersionNumber,
			&v.FilePath,
			&v.FileName,
			&v.FileSize,
			&v.MimeType,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document versions: %w", err)
	}

	if versions == nil {
		versions = []models.DocumentVersion{}
	}

	return versions, nil
}

// CreateWithVersion creates a document and its first version through
// the create_document_with_version server-side function. The function
// either commits both rows or neither; the core never observes a
// document without its version.
func (r *PostgresDocumentRepository) CreateWithVersion(ctx context.Context, params *repositories.CreateDocumentParams) (string, error) {
	query := `
		SELECT create_document_with_version(
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	var documentID string
	err := r.pool.QueryRow(ctx, query,
		params.Name,
		params.Objective,
		params.Scope,
		params.DocumentTypeID,
		params.ProcessID,
		params.ResponsibleUserID,
		params.CreatedBy,
		params.Code,
		params.FilePath,
		params.FileName,
		params.FileSize,
		params.MimeType,
	).Scan(&documentID)

	if err != nil {
		if IsPgDuplicateError(err) {
			return "", fmt.Errorf("document code %s: %w", params.Code, domain.ErrConflict)
		}
		return "", fmt.Errorf("create document with version: %w", err)
	}

	return documentID, nil
}

// SetStatus transitions a document's status. The update only matches
// rows whose current status is in the allowed source set, keeping the
// lifecycle monotone even under concurrent writers.
func (r *PostgresDocumentRepository) SetStatus(ctx context.Context, id string, from []models.Status, to models.Status) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`, r.tables.Documents)

	result, err := r.pool.Exec(ctx, query, to, id, statusStrings(from))
	if err != nil {
		return fmt.Errorf("set document status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the document is gone or its status moved on.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("document %s: status transition to %s: %w", id, to, domain.ErrConflict)
	}

	return nil
}

// GenerateCode requests a new globally unique document code from the
// store's code-generation function.
func (r *PostgresDocumentRepository) GenerateCode(ctx context.Context, typeCode, processCode string) (string, error) {
	var code string
	err := r.pool.QueryRow(ctx, `SELECT generate_document_code($1, $2)`, typeCode, processCode).Scan(&code)
	if err != nil {
		return "", fmt.Errorf("generate document code: %w", err)
	}
	if code == "" {
		return "", fmt.Errorf("generate document code: empty code returned")
	}
	return code, nil
}

func statusStrings(statuses []models.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
