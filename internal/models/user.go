package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered player. Name is unique across the service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"user_name"`
	Email     string    `json:"email,omitempty"`
	Wins      int       `json:"wins"`
	CreatedAt time.Time `json:"created_at"`
}
