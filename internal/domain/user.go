package domain

import "time"

// User represents one registered account. PasswordHash holds the hex
// SHA-256 digest of the current secret, never the secret itself.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
