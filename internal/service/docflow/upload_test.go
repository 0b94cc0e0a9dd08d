package docflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"sigedoc/internal/authz"
	"sigedoc/internal/domain"
	"sigedoc/internal/domain/models"
	"sigedoc/internal/domain/repositories"
	"sigedoc/internal/storage"
)

// fakeObjectStore keeps objects in a map and honors the no-overwrite
// contract the way the real storage service does.
type fakeObjectStore struct {
	objects map[string][]byte
	uploads []string
	failAll bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Upload(_ context.Context, path string, data []byte, opts storage.UploadOptions) error {
	if f.failAll {
		return errors.New("storage is down")
	}
	f.uploads = append(f.uploads, path)
	if _, exists := f.objects[path]; exists && !opts.AllowOverwrite {
		return fmt.Errorf("upload %s: %w", path, storage.ErrObjectExists)
	}
	f.objects[path] = append([]byte(nil), data...)
	return nil
}

func (f *fakeObjectStore) Download(_ context.Context, path string) ([]byte, error) {
	data, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("download %s: %w", path, storage.ErrObjectNotFound)
	}
	return data, nil
}

func (f *fakeObjectStore) Remove(_ context.Context, path string) error {
	delete(f.objects, path)
	return nil
}

func (f *fakeObjectStore) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	if _, ok := f.objects[path]; !ok {
		return "", storage.ErrObjectNotFound
	}
	return "https://storage.example/signed/" + path, nil
}

type fakeDocumentRepo struct {
	created   []*repositories.CreateDocumentParams
	documents map[string]*models.Document
	createErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: make(map[string]*models.Document)}
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	doc, ok := f.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

func (f *fakeDocumentRepo) List(_ context.Context) ([]models.Document, error) {
	var docs []models.Document
	for _, d := range f.documents {
		docs = append(docs, *d)
	}
	return docs, nil
}

func (f *fakeDocumentRepo) ListVersions(_ context.Context, _ string) ([]models.DocumentVersion, error) {
	return []models.DocumentVersion{}, nil
}

func (f *fakeDocumentRepo) CreateWithVersion(_ context.Context, params *repositories.CreateDocumentParams) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, params)
	id := fmt.Sprintf("doc-%d", len(f.created))
	f.documents[id] = &models.Document{
		ID:             id,
		Code:           params.Code,
		Name:           params.Name,
		CreatedBy:      params.CreatedBy,
		Status:         models.StatusDraft,
		CurrentVersion: 1,
		FilePath:       params.FilePath,
		FileName:       params.FileName,
	}
	return id, nil
}

func (f *fakeDocumentRepo) SetStatus(_ context.Context, id string, from []models.Status, to models.Status) error {
	doc, ok := f.documents[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	for _, s := range from {
		if doc.Status == s {
			doc.Status = to
			return nil
		}
	}
	return fmt.Errorf("document %s: %w", id, domain.ErrConflict)
}

type fakeCodeGenerator struct {
	code  string
	err   error
	calls int
}

func (f *fakeCodeGenerator) GenerateCode(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.code, nil
}

func newTestService(docs *fakeDocumentRepo, codes *fakeCodeGenerator, store storage.ObjectStore) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(docs, codes, store, authz.New("calidad:documentos"), nil, logger)
}

func validForm() *UploadForm {
	return &UploadForm{
		Name:              "Plan de Auditoria",
		Objective:         "Definir el plan anual",
		Scope:             "Todos los procesos",
		DocumentTypeID:    "type-1",
		ProcessID:         "proc-1",
		ResponsibleUserID: "user-9",
		TypeCode:          "PR",
		ProcessCode:       "GC",
	}
}

func TestCreateDocumentVersion(t *testing.T) {
	docs := newFakeDocumentRepo()
	codes := &fakeCodeGenerator{code: "PR-GC-01"}
	store := newFakeObjectStore()
	svc := newTestService(docs, codes, store)

	var milestones []int
	content := []byte("pdf-bytes")
	result, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), content,
		FileMeta{Name: "plan.docx", Size: int64(len(content)), MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		func(p int) { milestones = append(milestones, p) },
	)
	if err != nil {
		t.Fatalf("CreateDocumentVersion: %v", err)
	}

	if result.Code != "PR-GC-01" {
		t.Errorf("Code = %q", result.Code)
	}
	if result.VersionNumber != 1 {
		t.Errorf("VersionNumber = %d, want 1", result.VersionNumber)
	}
	if want := "procedures/PR-GC-01/v1/PR-GC-01-v1.docx"; result.FilePath != want {
		t.Errorf("FilePath = %q, want %q", result.FilePath, want)
	}

	// The record must carry the confirmed storage path.
	if len(docs.created) != 1 {
		t.Fatalf("created %d documents, want 1", len(docs.created))
	}
	if docs.created[0].FilePath != result.FilePath {
		t.Errorf("recorded path %q differs from uploaded path %q", docs.created[0].FilePath, result.FilePath)
	}
	if _, ok := store.objects[result.FilePath]; !ok {
		t.Error("no object stored at recorded path")
	}

	// Progress is monotonically increasing and ends at 100.
	if len(milestones) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(milestones); i++ {
		if milestones[i] <= milestones[i-1] {
			t.Errorf("progress not monotone: %v", milestones)
		}
	}
	if milestones[len(milestones)-1] != 100 {
		t.Errorf("final milestone = %d, want 100", milestones[len(milestones)-1])
	}
}

func TestCreateDocumentVersionRoundTrip(t *testing.T) {
	docs := newFakeDocumentRepo()
	codes := &fakeCodeGenerator{code: "FO-RH-12"}
	store := newFakeObjectStore()
	svc := newTestService(docs, codes, store)

	content := []byte("original spreadsheet bytes")
	result, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), content,
		FileMeta{Name: "registro.xlsx", Size: int64(len(content)), MimeType: "application/vnd.ms-excel"}, nil)
	if err != nil {
		t.Fatalf("CreateDocumentVersion: %v", err)
	}

	fetched, err := svc.Download(context.Background(), result.FilePath)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !bytes.Equal(fetched, content) {
		t.Error("round-trip content differs from original input")
	}
}

func TestCreateDocumentVersionRejectsFileType(t *testing.T) {
	docs := newFakeDocumentRepo()
	codes := &fakeCodeGenerator{code: "PR-GC-01"}
	store := newFakeObjectStore()
	svc := newTestService(docs, codes, store)

	_, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), []byte("x"),
		FileMeta{Name: "malware.exe", Size: 1, MimeType: "application/octet-stream"}, nil)

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindInvalidFileType {
		t.Fatalf("expected InvalidFileType, got %v", err)
	}
	if codes.calls != 0 {
		t.Error("code generation must not run for rejected files")
	}
	if len(store.uploads) != 0 {
		t.Error("nothing may be uploaded for rejected files")
	}
}

func TestCreateDocumentVersionRejectsIncompleteForm(t *testing.T) {
	codes := &fakeCodeGenerator{code: "PR-GC-01"}
	svc := newTestService(newFakeDocumentRepo(), codes, newFakeObjectStore())

	form := validForm()
	form.Name = ""
	_, err := svc.CreateDocumentVersion(context.Background(), "u1", form, []byte("x"),
		FileMeta{Name: "plan.pdf", Size: 1, MimeType: "application/pdf"}, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if codes.calls != 0 {
		t.Error("no side effects expected before validation passes")
	}
}

func TestCreateDocumentVersionRejectsMissingExtension(t *testing.T) {
	svc := newTestService(newFakeDocumentRepo(), &fakeCodeGenerator{code: "PR-GC-01"}, newFakeObjectStore())

	_, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), []byte("x"),
		FileMeta{Name: "plan", Size: 1, MimeType: "application/pdf"}, nil)

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindInvalidFileType {
		t.Fatalf("expected InvalidFileType for extensionless name, got %v", err)
	}
}

func TestCreateDocumentVersionRejectsOversizedFile(t *testing.T) {
	store := newFakeObjectStore()
	codes := &fakeCodeGenerator{code: "PR-GC-01"}
	svc := newTestService(newFakeDocumentRepo(), codes, store)

	_, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), nil,
		FileMeta{Name: "plan.pdf", Size: 11 << 20, MimeType: "application/pdf"}, nil)

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindFileTooLarge {
		t.Fatalf("expected FileTooLarge, got %v", err)
	}
	if codes.calls != 0 || len(store.uploads) != 0 {
		t.Error("no side effects expected for oversized files")
	}
}

func TestCreateDocumentVersionCodeGenerationFailure(t *testing.T) {
	docs := newFakeDocumentRepo()
	codes := &fakeCodeGenerator{err: errors.New("sequence exhausted")}
	store := newFakeObjectStore()
	svc := newTestService(docs, codes, store)

	_, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), []byte("x"),
		FileMeta{Name: "plan.pdf", Size: 1, MimeType: "application/pdf"}, nil)

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindCodeGenerationFailed {
		t.Fatalf("expected CodeGenerationFailed, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Error("code generation failure must leave storage untouched")
	}
	if len(docs.created) != 0 {
		t.Error("code generation failure must leave the database untouched")
	}
}

func TestCreateDocumentVersionCollisionRetriesOnce(t *testing.T) {
	docs := newFakeDocumentRepo()
	codes := &fakeCodeGenerator{code: "PR-GC-01"}
	store := newFakeObjectStore()
	// Occupy the deterministic path so the first attempt collides.
	store.objects["procedures/PR-GC-01/v1/PR-GC-01-v1.docx"] = []byte("occupied")
	svc := newTestService(docs, codes, store)

	content := []byte("new version bytes")
	result, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), content,
		FileMeta{Name: "plan.docx", Size: int64(len(content)), MimeType: "application/msword"}, nil)
	if err != nil {
		t.Fatalf("CreateDocumentVersion: %v", err)
	}

	if len(store.uploads) != 2 {
		t.Fatalf("made %d upload attempts, want 2", len(store.uploads))
	}
	if result.FilePath == "procedures/PR-GC-01/v1/PR-GC-01-v1.docx" {
		t.Error("retry must use a uniquified path")
	}
	// The occupied object is untouched.
	if string(store.objects["procedures/PR-GC-01/v1/PR-GC-01-v1.docx"]) != "occupied" {
		t.Error("collision retry overwrote the existing object")
	}
	if !bytes.Equal(store.objects[result.FilePath], content) {
		t.Error("retried upload did not store the new content")
	}
}

func TestCreateDocumentVersionSecondCollisionIsFatal(t *testing.T) {
	docs := newFakeDocumentRepo()
	codes := &fakeCodeGenerator{code: "PR-GC-01"}
	svc := newTestService(docs, codes, alwaysConflictStore{})

	_, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), []byte("x"),
		FileMeta{Name: "plan.docx", Size: 1, MimeType: "application/msword"}, nil)

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindStorageConflict {
		t.Fatalf("expected StorageConflict after second collision, got %v", err)
	}
	if len(docs.created) != 0 {
		t.Error("no DocumentVersion may be created after a fatal collision")
	}
}

func TestCreateDocumentVersionDatabaseFailureAfterUpload(t *testing.T) {
	docs := newFakeDocumentRepo()
	docs.createErr = errors.New("connection reset")
	codes := &fakeCodeGenerator{code: "PR-GC-01"}
	store := newFakeObjectStore()
	svc := newTestService(docs, codes, store)

	_, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), []byte("x"),
		FileMeta{Name: "plan.pdf", Size: 1, MimeType: "application/pdf"}, nil)

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindDatabaseWriteFailed {
		t.Fatalf("expected DatabaseWriteFailed, got %v", err)
	}
	// The error must say storage succeeded so operators can reconcile.
	if !perr.StorageCommitted {
		t.Error("StorageCommitted must be set for post-upload database failures")
	}
	if perr.FilePath == "" {
		t.Error("the orphaned path must be reported")
	}
	// The object really was stored; no automatic cleanup.
	if _, ok := store.objects[perr.FilePath]; !ok {
		t.Error("uploaded object should remain for manual reconciliation")
	}
}

func TestCreateDocumentVersionStorageOutage(t *testing.T) {
	docs := newFakeDocumentRepo()
	store := newFakeObjectStore()
	store.failAll = true
	svc := newTestService(docs, &fakeCodeGenerator{code: "PR-GC-01"}, store)

	_, err := svc.CreateDocumentVersion(context.Background(), "u1", validForm(), []byte("x"),
		FileMeta{Name: "plan.pdf", Size: 1, MimeType: "application/pdf"}, nil)

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindStorageUnavailable {
		t.Fatalf("expected StorageUnavailable, got %v", err)
	}
	if perr.StorageCommitted {
		t.Error("nothing was committed; StorageCommitted must be false")
	}
	if len(docs.created) != 0 {
		t.Error("database must stay untouched when the upload fails")
	}
}

// alwaysConflictStore reports a collision for every upload.
type alwaysConflictStore struct{}

func (alwaysConflictStore) Upload(_ context.Context, path string, _ []byte, _ storage.UploadOptions) error {
	return fmt.Errorf("upload %s: %w", path, storage.ErrObjectExists)
}

func (alwaysConflictStore) Download(_ context.Context, _ string) ([]byte, error) {
	return nil, storage.ErrObjectNotFound
}

func (alwaysConflictStore) Remove(_ context.Context, _ string) error { return nil }

func (alwaysConflictStore) SignedURL(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "", storage.ErrObjectNotFound
}
