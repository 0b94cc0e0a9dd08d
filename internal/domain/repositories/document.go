package repositories

import (
	"context"

	"sigedoc/internal/domain/models"
)

// CreateDocumentParams carries everything the store needs to create a
// document together with its first version in one atomic call.
type CreateDocumentParams struct {
	Name              string
	Objective         string
	Scope             string
	DocumentTypeID    string
	ProcessID         string
	ResponsibleUserID string
	CreatedBy         string
	Code              string
	FilePath          string
	FileName          string
	FileSize          int64
	MimeType          string
}

// DocumentRepository defines document persistence operations.
// CreateWithVersion must create the document and its first version as a
// single atomic unit on the store side, or fail entirely.
type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
	ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error)
	CreateWithVersion(ctx context.Context, params *CreateDocumentParams) (string, error)
	SetStatus(ctx context.Context, id string, from []models.Status, to models.Status) error
}

// CodeGenerator produces globally unique document classification codes
// from type and process classifiers. Owned by the persistent store.
type CodeGenerator interface {
	GenerateCode(ctx context.Context, typeCode, processCode string) (string, error)
}
