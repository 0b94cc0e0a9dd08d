package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"sigedoc/internal/httputil"
)

// RequestID tags every request with a unique id, echoed in the
// X-Request-ID response header and available in the context for log
// correlation. A client-supplied id is kept as-is.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, httputil.WithRequestID(r, id))
	})
}
