package models

import "time"

// RefreshToken is a persisted refresh session. Tokens are rotated on
// refresh and never rendered to clients as JSON.
type RefreshToken struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	Revoked   bool       `db:"revoked"`
	RevokedAt *time.Time `db:"revoked_at"`
	IPAddress string     `db:"ip_address"`
	UserAgent string     `db:"user_agent"`
	CreatedAt time.Time  `db:"created_at"`
}
