package domain

import (
	"time"

	"github.com/colabhub/colabhub/internal/validation"
)

// User is a registered member of the platform. Users own projects, are
// responsible for tasks, author solutions and hand out ratings. A user is
// never physically removed; deletion clears the Active flag and keeps every
// dependent row intact.
type User struct {
	ID           string    `db:"id" validate:"required,entity_id"`
	Name         string    `db:"name" validate:"required"`
	Email        string    `db:"email" validate:"required,contains=@"`
	PasswordHash string    `db:"password_hash" validate:"required"`
	Active       bool      `db:"active"`
	RegisteredAt time.Time `db:"registered_at"`
}

// NewUser builds an active user. An empty id gets a generated identifier.
func NewUser(id, name, email, passwordHash string) *User {
	return &User{
		ID:           idOrNew(id),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
	}
}

// Validate reports whether the user may be persisted.
func (u *User) Validate() error {
	return validation.Struct("user", u)
}

// Equal compares users by identifier only.
func (u *User) Equal(other *User) bool {
	return other != nil && u.ID == other.ID
}
