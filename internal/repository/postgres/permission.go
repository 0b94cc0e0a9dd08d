package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"sigedoc/internal/domain/models"
)

// PostgresPermissionRepository implements the PermissionRepository
// interface. The permission catalog only changes on deployment, so the
// grouped catalog is loaded once and served from memory afterwards.
// Grant and revoke go through the store's assignment procedures.
type PostgresPermissionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger

	mu      sync.RWMutex
	catalog map[string][]models.Permission
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(config *RepositoryConfig) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Catalog returns every permission defined by the system, grouped by
// module code. Read-through: the first call loads from the store,
// later calls are served from the cache.
func (r *PostgresPermissionRepository) Catalog(ctx context.Context) (map[string][]models.Permission, error) {
	r.mu.RLock()
	cached := r.catalog
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	query := fmt.Sprintf(`
		SELECT code, module_code, COALESCE(description, '')
		FROM %s
		ORDER BY module_code, code
	`, r.tables.Permissions)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load permission catalog: %w", err)
	}
	defer rows.Close()

	catalog := make(map[string][]models.Permission)
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.Code, &p.ModuleCode, &p.Description); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		catalog[p.ModuleCode] = append(catalog[p.ModuleCode], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	r.mu.Lock()
	r.catalog = catalog
	r.mu.Unlock()

	r.logger.Debug("permission catalog loaded", "modules", len(catalog))
	return catalog, nil
}

// GetUserPermissions returns the grant records for a user, including
// revoked (inactive) entries so callers can audit grant history.
func (r *PostgresPermissionRepository) GetUserPermissions(ctx context.Context, userID string) ([]models.UserPermission, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, is_active, granted_at FROM get_user_permissions($1)`, userID)
	if err != nil {
		return nil, fmt.Errorf("get user permissions: %w", err)
	}
	defer rows.Close()

	var perms []models.UserPermission
	for rows.Next() {
		var p models.UserPermission
		if err := rows.Scan(&p.Code, &p.IsActive, &p.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan user permission: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user permissions: %w", err)
	}

	if perms == nil {
		perms = []models.UserPermission{}
	}

	return perms, nil
}

// Assign grants the given permission codes to a user through the
// store's assignment procedure.
func (r *PostgresPermissionRepository) Assign(ctx context.Context, userID string, codes []string, notes string) error {
	if _, err := r.pool.Exec(ctx, `SELECT assign_permissions($1, $2, $3)`, userID, codes, notes); err != nil {
		return fmt.Errorf("assign permissions: %w", err)
	}
	r.logger.Info("permissions assigned", "user_id", userID, "count", len(codes))
	return nil
}

// Revoke removes the given permission codes from a user through the
// store's revocation procedure.
func (r *PostgresPermissionRepository) Revoke(ctx context.Context, userID string, codes []string, notes string) error {
	if _, err := r.pool.Exec(ctx, `SELECT revoke_permissions($1, $2, $3)`, userID, codes, notes); err != nil {
		return fmt.Errorf("revoke permissions: %w", err)
	}
	r.logger.Info("permissions revoked", "user_id", userID, "count", len(codes))
	return nil
}
