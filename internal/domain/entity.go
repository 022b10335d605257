// Package domain defines the persisted entity kinds of the platform and the
// invariants persistence honors before every write. Entities carry scalar
// foreign keys as the authoritative record of a relationship; cached object
// references are conveniences kept in sync by the setters.
package domain

import "github.com/google/uuid"

// IDGenerator produces opaque unique identifiers for new entities. Callers
// needing pinned identifiers pass them to the constructors directly.
type IDGenerator func() string

// NewID is the default generator, a random UUID v4 string.
func NewID() string {
	return uuid.NewString()
}

// idOrNew returns the supplied identifier, or a fresh one when it is empty.
func idOrNew(id string) string {
	if id == "" {
		return NewID()
	}
	return id
}
