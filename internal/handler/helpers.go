package handler

import (
	"errors"
	"net/http"

	"sigedoc/internal/domain"
	"sigedoc/internal/domain/models"
	"sigedoc/internal/httputil"
	"sigedoc/internal/service/docflow"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var perr *docflow.PipelineError
	if errors.As(err, &perr) {
		handlePipelineError(w, perr)
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handlePipelineError maps pipeline failure kinds to HTTP statuses. A
// post-upload database failure reports the orphaned object so operators
// can reconcile.
func handlePipelineError(w http.ResponseWriter, perr *docflow.PipelineError) {
	switch perr.Kind {
	case docflow.KindInvalidFileType:
		httputil.RespondError(w, http.StatusBadRequest, perr.Message)
	case docflow.KindFileTooLarge:
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, perr.Message)
	case docflow.KindNotFound:
		httputil.RespondError(w, http.StatusNotFound, perr.Message)
	case docflow.KindStorageConflict:
		httputil.RespondError(w, http.StatusConflict, perr.Message)
	case docflow.KindDatabaseWriteFailed:
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, perr.Message, map[string]interface{}{
			"storage_committed": perr.StorageCommitted,
			"file_path":         perr.FilePath,
		})
	case docflow.KindCodeGenerationFailed, docflow.KindStorageUnavailable:
		httputil.RespondError(w, http.StatusBadGateway, perr.Message)
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireActor fetches the authenticated actor or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (*models.Actor, bool) {
	actor := httputil.GetActor(r)
	if actor == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return actor, true
}
