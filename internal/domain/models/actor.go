package models

// Role is the coarse organizational authority level of a user.
// Roles grant blanket overrides in the authorization rule tables,
// independent of any explicitly granted permission.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleGerencia Role = "gerencia"
	RoleUser     Role = "user"
)

// Actor is the resolved identity of the current user: who they are,
// their role, and the permission codes explicitly granted to them.
// It is built once per request and passed explicitly into every
// authorization decision - no ambient lookup inside the engine.
type Actor struct {
	ID          string
	Role        Role
	Permissions map[string]struct{}
}

// NewActor constructs an actor with a preloaded permission set.
func NewActor(id string, role Role, permissionCodes []string) *Actor {
	set := make(map[string]struct{}, len(permissionCodes))
	for _, code := range permissionCodes {
		set[code] = struct{}{}
	}
	return &Actor{ID: id, Role: role, Permissions: set}
}

// HasPermission reports whether the actor was explicitly granted the
// permission identified by code.
func (a *Actor) HasPermission(code string) bool {
	_, ok := a.Permissions[code]
	return ok
}
