package models

import (
	uu "github.com/google/uuid"
)

// User's model. PublicID is the opaque identifier exposed in token claims,
// PassHash is nil for accounts created via a social provider.
type User struct {
	ID       int64   `json:"id" db:"id"`
	PublicID uu.UUID `json:"user_id" db:"public_id"`
	Email    string  `json:"email" db:"email"`
	PassHash []byte  `json:"-" db:"pass_hash"`
}
