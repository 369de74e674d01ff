package domain

import "time"

// MaxPasswordBytes is the longest password bcrypt accepts. Longer ones are rejected, never truncated.
const MaxPasswordBytes = 72

type User struct {
	ID           string
	Email        string // unique, compared case-sensitively
	PasswordHash string
	Name         string
	IsHotelOwner bool
	CreatedAt    time.Time
}
