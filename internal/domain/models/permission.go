package models

import "time"

// Permission is an immutable catalog entry. The catalog is owned by the
// persistent store; the core only reads it.
type Permission struct {
	Code        string `json:"code" db:"code"`
	ModuleCode  string `json:"module_code" db:"module_code"`
	Description string `json:"description,omitempty" db:"description"`
}

// UserPermission is a grant/revoke record for a specific user.
type UserPermission struct {
	Code      string    `json:"code" db:"code"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	GrantedAt time.Time `json:"granted_at" db:"granted_at"`
}
