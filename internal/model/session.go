package model

import "time"

// Session is a server-side admin session. The cookie token references it by ID
// so signing out revokes the token.
type Session struct {
	ID        string
	AdminID   string
	CreatedAt time.Time
	ExpiresAt time.Time
}
