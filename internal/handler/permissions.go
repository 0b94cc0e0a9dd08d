package handler

import (
	"context"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"sigedoc/internal/domain/models"
	"sigedoc/internal/domain/repositories"
	"sigedoc/internal/httputil"
)

// PermissionHandler handles the permission catalog and per-user grants
type PermissionHandler struct {
	permissions repositories.PermissionRepository
	logger      *slog.Logger
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(repo repositories.PermissionRepository, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{permissions: repo, logger: logger}
}

// Catalog returns every defined permission grouped by module
// GET /api/permissions
func (h *PermissionHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	catalog, err := h.permissions.Catalog(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, catalog)
}

// UserPermissions returns a user's grant records
// GET /api/users/{id}/permissions
func (h *PermissionHandler) UserPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	userID := r.PathValue("id")
	if !h.canManageGrants(actor) && actor.ID != userID {
		httputil.RespondError(w, http.StatusForbidden, "permission denied")
		return
	}

	grants, err := h.permissions.GetUserPermissions(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, grants)
}

type grantRequest struct {
	Codes []string `json:"codes"`
	Notes string   `json:"notes"`
}

func (g grantRequest) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Codes, validation.Required, validation.Length(1, 100)),
	)
}

// Assign grants permission codes to a user
// POST /api/users/{id}/permissions
func (h *PermissionHandler) Assign(w http.ResponseWriter, r *http.Request) {
	h.mutateGrants(w, r, h.permissions.Assign, "permissions assigned")
}

// Revoke removes permission codes from a user
// DELETE /api/users/{id}/permissions
func (h *PermissionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.mutateGrants(w, r, h.permissions.Revoke, "permissions revoked")
}

func (h *PermissionHandler) mutateGrants(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, userID string, codes []string, notes string) error,
	logMsg string,
) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !h.canManageGrants(actor) {
		httputil.RespondError(w, http.StatusForbidden, "permission denied")
		return
	}

	var req grantRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := r.PathValue("id")
	if err := apply(r.Context(), userID, req.Codes, req.Notes); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info(logMsg, "user_id", userID, "codes", req.Codes, "by", actor.ID)
	w.WriteHeader(http.StatusNoContent)
}

// canManageGrants restricts grant administration to admins.
func (h *PermissionHandler) canManageGrants(actor *models.Actor) bool {
	return actor.Role == models.RoleAdmin
}
