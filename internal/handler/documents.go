package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"sigedoc/internal/config"
	"sigedoc/internal/domain/models"
	"sigedoc/internal/httputil"
	"sigedoc/internal/service/docflow"
)

// DocumentHandler handles controlled-document HTTP requests
type DocumentHandler struct {
	docflow *docflow.Service
	logger  *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(svc *docflow.Service, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docflow: svc, logger: logger}
}

// Upload creates a document and its first version from a multipart form.
// POST /api/documents
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	// A little headroom over the file limit for the form fields; the
	// pipeline enforces the real size cap.
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	form := &docflow.UploadForm{
		Name:              r.FormValue("name"),
		Objective:         r.FormValue("objective"),
		Scope:             r.FormValue("scope"),
		DocumentTypeID:    r.FormValue("document_type_id"),
		ProcessID:         r.FormValue("process_id"),
		ResponsibleUserID: r.FormValue("responsible_user_id"),
		TypeCode:          r.FormValue("type_code"),
		ProcessCode:       r.FormValue("process_code"),
	}

	meta := docflow.FileMeta{
		Name:     header.Filename,
		Size:     header.Size,
		MimeType: contentTypeOf(header.Header.Get("Content-Type"), header.Filename),
	}

	result, err := h.docflow.CreateDocumentVersion(r.Context(), actor.ID, form, data, meta, nil)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// Get retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	doc, err := h.docflow.GetDocument(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// List returns the documents visible to the actor
// GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	docs, err := h.docflow.ListDocuments(r.Context(), actor)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.DocumentListResponse{
		Documents: docs,
		Total:     len(docs),
	})
}

// ListVersions returns a document's version history
// GET /api/documents/{id}/versions
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	versions, err := h.docflow.ListVersions(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, versions)
}

// Download serves the document's current file as an attachment
// GET /api/documents/{id}/download
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	file, err := h.docflow.DownloadDocument(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	ct := mime.TypeByExtension(filepath.Ext(file.Name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}

// SignedURL returns a time-limited download URL
// GET /api/documents/{id}/signed-url
func (h *DocumentHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	url, err := h.docflow.SignedDocumentURL(r.Context(), actor, r.PathValue("id"), 15*time.Minute)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Archive moves a document to archived
// POST /api/documents/{id}/archive
func (h *DocumentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.docflow.ArchiveDocument(r.Context(), actor, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approve moves a draft document to approved
// POST /api/documents/{id}/approve
func (h *DocumentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.docflow.ApproveDocument(r.Context(), actor, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// contentTypeOf prefers the declared part content type, falling back to
// the extension.
func contentTypeOf(declared, filename string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return declared
}
