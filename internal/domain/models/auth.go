package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims represents the JWT claims issued by the platform's auth
// provider. The application role (admin/gerencia/user) travels in
// app_metadata; the top-level role claim only distinguishes
// authenticated sessions from anonymous ones.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	Role         string                 `json:"role"`
	SessionID    string                 `json:"session_id"`
	IsAnonymous  bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}

// AppRole returns the organizational role carried in app_metadata,
// defaulting to the ordinary user role when absent.
func (c *AccessClaims) AppRole() Role {
	if c.AppMetadata != nil {
		if v, ok := c.AppMetadata["role"].(string); ok && v != "" {
			return Role(v)
		}
	}
	return RoleUser
}
