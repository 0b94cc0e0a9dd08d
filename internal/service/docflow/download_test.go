package docflow

import (
	"context"
	"errors"
	"testing"

	"sigedoc/internal/domain"
	"sigedoc/internal/domain/models"
)

func adminActor() *models.Actor {
	return models.NewActor("admin-1", models.RoleAdmin, nil)
}

func plainActor(id string, codes ...string) *models.Actor {
	return models.NewActor(id, models.RoleUser, codes)
}

func TestDownloadMissingPath(t *testing.T) {
	svc := newTestService(newFakeDocumentRepo(), &fakeCodeGenerator{}, newFakeObjectStore())

	_, err := svc.Download(context.Background(), "")

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindNotFound {
		t.Fatalf("expected NotFound for empty path, got %v", err)
	}
}

func TestDownloadMissingObject(t *testing.T) {
	svc := newTestService(newFakeDocumentRepo(), &fakeCodeGenerator{}, newFakeObjectStore())

	_, err := svc.Download(context.Background(), "procedures/PR-GC-01/v1/PR-GC-01-v1.pdf")

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindNotFound {
		t.Fatalf("expected NotFound for missing object, got %v", err)
	}
}

func TestDownloadEmptyObject(t *testing.T) {
	store := newFakeObjectStore()
	store.objects["procedures/PR-GC-01/v1/PR-GC-01-v1.pdf"] = []byte{}
	svc := newTestService(newFakeDocumentRepo(), &fakeCodeGenerator{}, store)

	_, err := svc.Download(context.Background(), "procedures/PR-GC-01/v1/PR-GC-01-v1.pdf")

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindStorageUnavailable {
		t.Fatalf("expected StorageUnavailable for empty object, got %v", err)
	}
}

func TestDownloadAsDocumentNaming(t *testing.T) {
	store := newFakeObjectStore()
	store.objects["procedures/PR-GC-01/v2/PR-GC-01-v2.docx"] = []byte("content")
	svc := newTestService(newFakeDocumentRepo(), &fakeCodeGenerator{}, store)

	file, err := svc.DownloadAsDocument(context.Background(), &models.Document{
		ID:             "doc-1",
		Code:           "PR-GC-01",
		Name:           "Plan de Auditoría",
		CurrentVersion: 2,
		FilePath:       "procedures/PR-GC-01/v2/PR-GC-01-v2.docx",
	})
	if err != nil {
		t.Fatalf("DownloadAsDocument: %v", err)
	}
	if want := "PR-GC-01_Plan_de_Auditor_a_v2.docx"; file.Name != want {
		t.Errorf("served name = %q, want %q", file.Name, want)
	}
	if string(file.Data) != "content" {
		t.Errorf("served data = %q", file.Data)
	}
}

func TestGetDocumentAuthorization(t *testing.T) {
	docs := newFakeDocumentRepo()
	docs.documents["doc-1"] = &models.Document{
		ID: "doc-1", CreatedBy: "owner-1", Status: models.StatusDraft,
	}
	svc := newTestService(docs, &fakeCodeGenerator{}, newFakeObjectStore())

	tests := []struct {
		name    string
		actor   *models.Actor
		allowed bool
	}{
		{"admin sees everything", adminActor(), true},
		{"owner sees own draft", plainActor("owner-1"), true},
		{"stranger without grants denied", plainActor("other-1"), false},
		{"view_all grant allows", plainActor("other-1", "calidad:documentos_view_all"), true},
		{"nil actor denied", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetDocument(context.Background(), tc.actor, "doc-1")
			if tc.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tc.allowed && !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestListDocumentsFiltersByView(t *testing.T) {
	docs := newFakeDocumentRepo()
	docs.documents["doc-1"] = &models.Document{ID: "doc-1", CreatedBy: "u1", Status: models.StatusDraft}
	docs.documents["doc-2"] = &models.Document{ID: "doc-2", CreatedBy: "u2", Status: models.StatusDraft}
	svc := newTestService(docs, &fakeCodeGenerator{}, newFakeObjectStore())

	visible, err := svc.ListDocuments(context.Background(), plainActor("u1"))
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != "doc-1" {
		t.Errorf("owner should see only their own draft, got %v", visible)
	}

	all, err := svc.ListDocuments(context.Background(), adminActor())
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin should see both documents, got %d", len(all))
	}
}

func TestArchiveDocumentTransitions(t *testing.T) {
	docs := newFakeDocumentRepo()
	docs.documents["doc-1"] = &models.Document{ID: "doc-1", CreatedBy: "u1", Status: models.StatusApproved}
	svc := newTestService(docs, &fakeCodeGenerator{}, newFakeObjectStore())

	if err := svc.ArchiveDocument(context.Background(), adminActor(), "doc-1"); err != nil {
		t.Fatalf("ArchiveDocument: %v", err)
	}
	if docs.documents["doc-1"].Status != models.StatusArchived {
		t.Errorf("status = %s, want archived", docs.documents["doc-1"].Status)
	}

	// Archived is terminal: the guarded transition finds no eligible
	// source status and reports a conflict.
	err := svc.ArchiveDocument(context.Background(), adminActor(), "doc-1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict re-archiving, got %v", err)
	}
}

func TestApproveDocument(t *testing.T) {
	docs := newFakeDocumentRepo()
	docs.documents["doc-1"] = &models.Document{ID: "doc-1", CreatedBy: "u1", Status: models.StatusDraft}
	svc := newTestService(docs, &fakeCodeGenerator{}, newFakeObjectStore())

	// Plain users cannot approve even their own documents.
	err := svc.ApproveDocument(context.Background(), plainActor("u1"), "doc-1")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for plain user, got %v", err)
	}

	if err := svc.ApproveDocument(context.Background(), adminActor(), "doc-1"); err != nil {
		t.Fatalf("ApproveDocument: %v", err)
	}
	if docs.documents["doc-1"].Status != models.StatusApproved {
		t.Errorf("status = %s, want approved", docs.documents["doc-1"].Status)
	}

	// The approved document cannot be approved again; the guarded
	// transition reports a conflict.
	err = svc.ApproveDocument(context.Background(), adminActor(), "doc-1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict re-approving, got %v", err)
	}
}

func TestSignedDocumentURL(t *testing.T) {
	docs := newFakeDocumentRepo()
	docs.documents["doc-1"] = &models.Document{
		ID: "doc-1", CreatedBy: "u1", Status: models.StatusApproved,
		FilePath: "procedures/PR-GC-01/v1/PR-GC-01-v1.pdf",
	}
	store := newFakeObjectStore()
	store.objects["procedures/PR-GC-01/v1/PR-GC-01-v1.pdf"] = []byte("x")
	svc := newTestService(docs, &fakeCodeGenerator{}, store)

	url, err := svc.SignedDocumentURL(context.Background(), adminActor(), "doc-1", 0)
	if err != nil {
		t.Fatalf("SignedDocumentURL: %v", err)
	}
	if url == "" {
		t.Error("expected a non-empty signed URL")
	}

	_, err = svc.SignedDocumentURL(context.Background(), plainActor("stranger"), "doc-1", 0)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for stranger, got %v", err)
	}
}
