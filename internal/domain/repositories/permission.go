package repositories

import (
	"context"

	"sigedoc/internal/domain/models"
)

// PermissionRepository exposes the permission catalog and per-user
// grant/revoke records. The catalog is immutable from the core's view;
// grants change through the store's assignment procedures.
type PermissionRepository interface {
	// Catalog returns every permission defined by the system, grouped
	// by module code. Implementations may cache; the catalog only
	// changes on deployment.
	Catalog(ctx context.Context) (map[string][]models.Permission, error)

	GetUserPermissions(ctx context.Context, userID string) ([]models.UserPermission, error)
	Assign(ctx context.Context, userID string, codes []string, notes string) error
	Revoke(ctx context.Context, userID string, codes []string, notes string) error
}
