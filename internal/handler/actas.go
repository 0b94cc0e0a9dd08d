package handler

import (
	"log/slog"
	"net/http"

	"sigedoc/internal/domain/models"
	"sigedoc/internal/httputil"
	"sigedoc/internal/service/actas"
)

// ActaHandler handles meeting-record HTTP requests
type ActaHandler struct {
	actas  *actas.Service
	logger *slog.Logger
}

// NewActaHandler creates a new acta handler
func NewActaHandler(svc *actas.Service, logger *slog.Logger) *ActaHandler {
	return &ActaHandler{actas: svc, logger: logger}
}

// Create records a new acta in draft
// POST /api/actas
func (h *ActaHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var form actas.CreateForm
	if err := httputil.ParseJSON(w, r, &form); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acta, err := h.actas.Create(r.Context(), actor, &form)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, acta)
}

// Get retrieves an acta by ID
// GET /api/actas/{id}
func (h *ActaHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	acta, err := h.actas.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, acta)
}

// List returns the actas visible to the actor
// GET /api/actas
func (h *ActaHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	visible, err := h.actas.List(r.Context(), actor)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.ActaListResponse{
		Actas: visible,
		Total: len(visible),
	})
}

// Approve moves a draft acta to approved
// POST /api/actas/{id}/approve
func (h *ActaHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.actas.Approve(r.Context(), actor, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Archive moves an acta to archived
// POST /api/actas/{id}/archive
func (h *ActaHandler) Archive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.actas.Archive(r.Context(), actor, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenderDocument serves the printable acta document
// GET /api/actas/{id}/document
func (h *ActaHandler) RenderDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	rendered, err := h.actas.RenderDocument(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.WriteHeader(http.StatusOK)
	w.Write(rendered)
}

// Delete removes an acta
// DELETE /api/actas/{id}
func (h *ActaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.actas.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
