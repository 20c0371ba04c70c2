package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account role. It is a closed set: an account is either a
// customer (books tickets) or an organizer (owns events). The role is fixed
// at signup and never changes afterwards.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleOrganizer Role = "organizer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleOrganizer
}

// Account represents a user record in the `accounts` collection. The email
// is unique (index-enforced). PasswordHash is a bcrypt digest and is never
// serialized to JSON.
type Account struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` collection. The raw
// token is never stored; only its SHA-256 hex digest.
type RefreshToken struct {
	ID        uuid.UUID  `bson:"_id"`
	AccountID uuid.UUID  `bson:"account_id"`
	TokenHash string     `bson:"token_hash"`
	ExpiresAt time.Time  `bson:"expires_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
}
