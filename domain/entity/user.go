package entity

import (
	"time"
)

// User is identified by email alone; there is no password.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUser(id, email string) *User {
	return &User{
		ID:        id,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}
