package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a server-side login session. The row in the database is
// authoritative: deleting it logs the user out no matter what cookies are
// still in the wild.
type Session struct {
	ID        string
	UserID    int64
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionClaims is the payload of the signed session cookie. Only the
// session ID travels in the cookie; user identity is resolved from the
// stored session on every request.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
