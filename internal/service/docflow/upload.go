package docflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/oklog/ulid/v2"

	"sigedoc/internal/authz"
	"sigedoc/internal/config"
	"sigedoc/internal/docpath"
	"sigedoc/internal/domain"
	"sigedoc/internal/domain/repositories"
	"sigedoc/internal/obs"
	"sigedoc/internal/storage"
)

// Service runs the versioned upload and download pipelines for
// controlled documents. A single upload is sequential blocking I/O;
// independent uploads may run concurrently with no shared state beyond
// the stateless external services.
type Service struct {
	docs    repositories.DocumentRepository
	codes   repositories.CodeGenerator
	store   storage.ObjectStore
	engine  *authz.Engine
	metrics *obs.Metrics
	logger  *slog.Logger
}

// NewService creates a document pipeline service.
func NewService(
	docs repositories.DocumentRepository,
	codes repositories.CodeGenerator,
	store storage.ObjectStore,
	engine *authz.Engine,
	metrics *obs.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		docs:    docs,
		codes:   codes,
		store:   store,
		engine:  engine,
		metrics: metrics,
		logger:  logger,
	}
}

// UploadForm carries the descriptive fields of a new controlled
// document. TypeCode and ProcessCode are the classifiers handed to the
// code-generation function.
type UploadForm struct {
	Name              string `json:"name"`
	Objective         string `json:"objective"`
	Scope             string `json:"scope"`
	DocumentTypeID    string `json:"document_type_id"`
	ProcessID         string `json:"process_id"`
	ResponsibleUserID string `json:"responsible_user_id"`
	TypeCode          string `json:"type_code"`
	ProcessCode       string `json:"process_code"`
}

// Validate checks the descriptive fields before any side effect.
func (f UploadForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, config.MaxDocumentNameLength)),
		validation.Field(&f.Objective, validation.Required),
		validation.Field(&f.Scope, validation.Required),
		validation.Field(&f.DocumentTypeID, validation.Required),
		validation.Field(&f.ProcessID, validation.Required),
		validation.Field(&f.ResponsibleUserID, validation.Required),
		validation.Field(&f.TypeCode, validation.Required),
		validation.Field(&f.ProcessCode, validation.Required),
	)
}

// FileMeta describes the uploaded file.
type FileMeta struct {
	Name     string
	Size     int64
	MimeType string
}

// UploadResult reports a successful pipeline run.
type UploadResult struct {
	DocumentID    string `json:"document_id"`
	Code          string `json:"code"`
	VersionNumber int    `json:"version_number"`
	FilePath      string `json:"file_path"`
	FileName      string `json:"file_name"`
}

// CreateDocumentVersion runs the first-version upload pipeline:
// validate file, generate code, resolve path, upload with a single
// collision retry, then persist document+version atomically through the
// store. Each step is a progress milestone; any failure aborts
// immediately with no further steps executed.
//
// Ordering guarantee: the database call runs only after the upload is
// confirmed, so no DocumentVersion ever points at a path that was not
// written. The converse does not hold - a post-upload database failure
// leaves an orphaned object, reported via StorageCommitted for manual
// reconciliation rather than compensated automatically.
func (s *Service) CreateDocumentVersion(
	ctx context.Context,
	createdBy string,
	form *UploadForm,
	data []byte,
	meta FileMeta,
	progress ProgressFunc,
) (*UploadResult, error) {
	start := time.Now()
	result, err := s.runUpload(ctx, createdBy, form, data, meta, newProgressTracker(progress))
	outcome := "ok"
	if err != nil {
		var perr *PipelineError
		if errors.As(err, &perr) {
			outcome = string(perr.Kind)
		} else {
			outcome = "error"
		}
	}
	s.metrics.ObserveUpload(outcome, time.Since(start).Seconds())
	return result, err
}

func (s *Service) runUpload(
	ctx context.Context,
	createdBy string,
	form *UploadForm,
	data []byte,
	meta FileMeta,
	progress *progressTracker,
) (*UploadResult, error) {
	// Fail fast: no side effects before validation passes.
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := validateFile(data, meta); err != nil {
		return nil, err
	}
	progress.report(progressValidated)

	// Step 1: code generation. A failure here aborts with no storage or
	// database side effects.
	code, err := s.codes.GenerateCode(ctx, form.TypeCode, form.ProcessCode)
	if err != nil {
		return nil, &PipelineError{
			Kind:    KindCodeGenerationFailed,
			Message: fmt.Sprintf("generate code for type %s process %s", form.TypeCode, form.ProcessCode),
			Err:     err,
		}
	}
	progress.report(progressCodeAssigned)

	// Step 2: deterministic path for version 1. Later versions reuse
	// the same resolver with the caller-supplied version number.
	const versionNumber = 1
	path, err := docpath.Resolve(code, versionNumber, meta.Name)
	if err != nil {
		return nil, failure(KindInvalidFileType, "resolve storage path: %v", err)
	}
	progress.report(progressPathResolved)

	// Step 3: upload without overwrite; one retry with a uniquified
	// name on collision, then give up.
	finalPath, finalName, err := s.uploadWithRetry(ctx, path, data, meta)
	if err != nil {
		return nil, err
	}
	progress.report(progressUploaded)

	// Step 4: single atomic document+version creation. From here on a
	// failure means the object is already stored.
	documentID, err := s.docs.CreateWithVersion(ctx, &repositories.CreateDocumentParams{
		Name:              form.Name,
		Objective:         form.Objective,
		Scope:             form.Scope,
		DocumentTypeID:    form.DocumentTypeID,
		ProcessID:         form.ProcessID,
		ResponsibleUserID: form.ResponsibleUserID,
		CreatedBy:         createdBy,
		Code:              code,
		FilePath:          finalPath,
		FileName:          finalName,
		FileSize:          meta.Size,
		MimeType:          meta.MimeType,
	})
	if err != nil {
		s.logger.Error("document record creation failed after successful upload",
			"code", code,
			"file_path", finalPath,
			"error", err,
		)
		return nil, &PipelineError{
			Kind:             KindDatabaseWriteFailed,
			Message:          fmt.Sprintf("storage upload succeeded at %s but the document record was not created; reconcile manually", finalPath),
			StorageCommitted: true,
			FilePath:         finalPath,
			Err:              err,
		}
	}
	progress.report(progressRecorded)

	s.logger.Info("document version created",
		"document_id", documentID,
		"code", code,
		"version", versionNumber,
		"file_path", finalPath,
		"file_size", meta.Size,
	)
	progress.report(progressDone)

	return &UploadResult{
		DocumentID:    documentID,
		Code:          code,
		VersionNumber: versionNumber,
		FilePath:      finalPath,
		FileName:      finalName,
	}, nil
}

// uploadWithRetry uploads at the resolved path, never overwriting. On a
// name collision it retries exactly once under a uniquified object name
// (original stem + monotonic ULID suffix + original extension); a
// second collision is fatal for the operation.
func (s *Service) uploadWithRetry(ctx context.Context, path docpath.Path, data []byte, meta FileMeta) (string, string, error) {
	opts := storage.UploadOptions{ContentType: meta.MimeType}

	err := s.store.Upload(ctx, path.String(), data, opts)
	if err == nil {
		return path.String(), path.ObjectName(), nil
	}
	if !errors.Is(err, storage.ErrObjectExists) {
		return "", "", &PipelineError{
			Kind:    KindStorageUnavailable,
			Message: fmt.Sprintf("upload to %s", path),
			Err:     err,
		}
	}

	suffix := strings.ToLower(ulid.Make().String())
	retryPath := path.WithSuffix(suffix)
	s.logger.Warn("storage path occupied, retrying with uniquified name",
		"path", path.String(),
		"retry_path", retryPath.String(),
	)

	err = s.store.Upload(ctx, retryPath.String(), data, opts)
	if err == nil {
		return retryPath.String(), retryPath.ObjectName(), nil
	}
	if errors.Is(err, storage.ErrObjectExists) {
		return "", "", &PipelineError{
			Kind:    KindStorageConflict,
			Message: fmt.Sprintf("path %s still occupied after retry at %s", path, retryPath),
			Err:     err,
		}
	}
	return "", "", &PipelineError{
		Kind:    KindStorageUnavailable,
		Message: fmt.Sprintf("retry upload to %s", retryPath),
		Err:     err,
	}
}

// validateFile checks the allowed-type and size preconditions, in that
// order.
func validateFile(data []byte, meta FileMeta) error {
	ext := docpath.Extension(meta.Name)
	_, extOK := config.AllowedExtensions[ext]
	_, mimeOK := config.AllowedMimeTypes[meta.MimeType]
	if !extOK && !mimeOK {
		return failure(KindInvalidFileType, "file type %q (%s) is not allowed", ext, meta.MimeType)
	}

	size := meta.Size
	if size == 0 {
		size = int64(len(data))
	}
	if size > config.MaxUploadBytes {
		return failure(KindFileTooLarge, "file size %d exceeds limit of %d bytes", size, int64(config.MaxUploadBytes))
	}

	return nil
}
