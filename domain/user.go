package domain

import "time"

type UserID string

// User is an account. PasswordHash is never shown to other users.
type User struct {
	ID           UserID
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}
