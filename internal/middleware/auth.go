package middleware

import (
	"context"
	"net/http"
	"strings"

	"sigedoc/internal/auth"
	"sigedoc/internal/domain/models"
	"sigedoc/internal/httputil"
)

// ActorResolver resolves a verified session into an Actor value.
type ActorResolver interface {
	Resolve(ctx context.Context, claims *models.AccessClaims) (*models.Actor, error)
}

// Auth verifies the bearer token, resolves the actor (identity, role,
// granted permissions) and stores it in the request context. Requests
// without a valid authenticated session get 401.
func Auth(verifier auth.JWTVerifier, resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			actor, err := resolver.Resolve(r.Context(), claims)
			if err != nil {
				httputil.RespondError(w, http.StatusInternalServerError, "failed to resolve session")
				return
			}

			next.ServeHTTP(w, httputil.WithActor(r, actor))
		})
	}
}
