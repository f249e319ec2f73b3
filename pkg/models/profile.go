package models

import "time"

// Profile is the public-facing user record. It is created lazily on the
// first authenticated session if absent; users carries the credentials.
type Profile struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
}
