package docflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sigedoc/internal/authz"
	"sigedoc/internal/docpath"
	"sigedoc/internal/domain"
	"sigedoc/internal/domain/models"
	"sigedoc/internal/storage"
)

// NamedFile is downloaded content together with the human-readable
// file name it should be served under.
type NamedFile struct {
	Name string
	Data []byte
}

// Download fetches the raw bytes stored at path.
func (s *Service) Download(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		s.metrics.ObserveDownload(string(KindNotFound))
		return nil, failure(KindNotFound, "no file path recorded")
	}

	data, err := s.store.Download(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.metrics.ObserveDownload(string(KindNotFound))
			return nil, &PipelineError{Kind: KindNotFound, Message: fmt.Sprintf("no object at %s", path), Err: err}
		}
		s.metrics.ObserveDownload(string(KindStorageUnavailable))
		return nil, &PipelineError{Kind: KindStorageUnavailable, Message: fmt.Sprintf("fetch %s", path), Err: err}
	}
	if len(data) == 0 {
		s.metrics.ObserveDownload(string(KindStorageUnavailable))
		return nil, failure(KindStorageUnavailable, "empty object at %s", path)
	}

	s.metrics.ObserveDownload("ok")
	return data, nil
}

// DownloadAsDocument fetches a document's current version and derives
// the served file name: {code}_{sanitizedName}_v{version}.{ext}.
func (s *Service) DownloadAsDocument(ctx context.Context, doc *models.Document) (*NamedFile, error) {
	if doc == nil || doc.FilePath == "" {
		s.metrics.ObserveDownload(string(KindNotFound))
		return nil, failure(KindNotFound, "document has no stored file")
	}

	data, err := s.Download(ctx, doc.FilePath)
	if err != nil {
		return nil, err
	}

	ext := docpath.Extension(doc.FilePath)
	return &NamedFile{
		Name: docpath.DownloadName(doc.Code, doc.Name, doc.CurrentVersion, ext),
		Data: data,
	}, nil
}

// GetDocument loads a document, gated by the View rule table.
func (s *Service) GetDocument(ctx context.Context, actor *models.Actor, id string) (*models.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.engine.Decide(authz.ActionView, actor, docRecord(doc)) {
		return nil, fmt.Errorf("view document %s: %w", id, domain.ErrForbidden)
	}
	return doc, nil
}

// ListDocuments returns the documents the actor may view.
func (s *Service) ListDocuments(ctx context.Context, actor *models.Actor) ([]models.Document, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Document, 0, len(all))
	for _, doc := range all {
		if s.engine.Decide(authz.ActionView, actor, docRecord(&doc)) {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

// ListVersions returns a document's version history, gated by View.
func (s *Service) ListVersions(ctx context.Context, actor *models.Actor, id string) ([]models.DocumentVersion, error) {
	if _, err := s.GetDocument(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.docs.ListVersions(ctx, id)
}

// DownloadDocument fetches a document's content for an actor, gated by
// the Download rule table.
func (s *Service) DownloadDocument(ctx context.Context, actor *models.Actor, id string) (*NamedFile, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.engine.Decide(authz.ActionDownload, actor, docRecord(doc)) {
		return nil, fmt.Errorf("download document %s: %w", id, domain.ErrForbidden)
	}
	return s.DownloadAsDocument(ctx, doc)
}

// SignedDocumentURL returns a time-limited URL for a document's stored
// file, gated by the Download rule table.
func (s *Service) SignedDocumentURL(ctx context.Context, actor *models.Actor, id string, ttl time.Duration) (string, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !s.engine.Decide(authz.ActionDownload, actor, docRecord(doc)) {
		return "", fmt.Errorf("download document %s: %w", id, domain.ErrForbidden)
	}
	if doc.FilePath == "" {
		return "", failure(KindNotFound, "document has no stored file")
	}
	return s.store.SignedURL(ctx, doc.FilePath, ttl)
}

// ArchiveDocument moves a document to archived, gated by the Archive
// rule table. Archived is terminal.
func (s *Service) ArchiveDocument(ctx context.Context, actor *models.Actor, id string) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.engine.Decide(authz.ActionArchive, actor, docRecord(doc)) {
		return fmt.Errorf("archive document %s: %w", id, domain.ErrForbidden)
	}
	return s.docs.SetStatus(ctx, id,
		[]models.Status{models.StatusDraft, models.StatusApproved},
		models.StatusArchived,
	)
}

// ApproveDocument moves a draft document to approved, gated by the
// Approve rule table.
func (s *Service) ApproveDocument(ctx context.Context, actor *models.Actor, id string) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.engine.Decide(authz.ActionApprove, actor, docRecord(doc)) {
		return fmt.Errorf("approve document %s: %w", id, domain.ErrForbidden)
	}
	return s.docs.SetStatus(ctx, id,
		[]models.Status{models.StatusDraft},
		models.StatusApproved,
	)
}

func docRecord(doc *models.Document) *authz.Record {
	return &authz.Record{CreatedBy: doc.CreatedBy, Status: doc.Status}
}
