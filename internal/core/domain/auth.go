package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// APIKey grants write access. Only the SHA-256 of the token is stored.
type APIKey struct {
	TokenHash string
	Email     string
	Role      string
	Active    bool
	CreatedAt time.Time
}

func (k APIKey) IsAdmin() bool {
	return k.Role == RoleAdmin
}
