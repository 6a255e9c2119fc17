package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account row. Authentication is handled by the external
// identity provider; this record only anchors created_by foreign keys.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
