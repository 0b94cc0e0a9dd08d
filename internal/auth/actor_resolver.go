package auth

import (
	"context"
	"fmt"
	"log/slog"

	"sigedoc/internal/domain/models"
	"sigedoc/internal/domain/repositories"
)

// ActorResolver builds the Actor value for a verified session: identity
// and role from the token claims, granted permission codes from the
// store. Resolved once per request; grant or revoke takes effect on the
// next request.
type ActorResolver struct {
	permissions repositories.PermissionRepository
	logger      *slog.Logger
}

// NewActorResolver creates a new actor resolver
func NewActorResolver(permissions repositories.PermissionRepository, logger *slog.Logger) *ActorResolver {
	return &ActorResolver{
		permissions: permissions,
		logger:      logger,
	}
}

// Resolve joins the verified claims with the user's active grants.
func (r *ActorResolver) Resolve(ctx context.Context, claims *models.AccessClaims) (*models.Actor, error) {
	grants, err := r.permissions.GetUserPermissions(ctx, claims.GetUserID())
	if err != nil {
		return nil, fmt.Errorf("resolve actor permissions: %w", err)
	}

	var codes []string
	for _, g := range grants {
		if g.IsActive {
			codes = append(codes, g.Code)
		}
	}

	return models.NewActor(claims.GetUserID(), claims.AppRole(), codes), nil
}
