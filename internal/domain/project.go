package domain

import (
	"time"

	"github.com/colabhub/colabhub/internal/validation"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "NAO_INICIADO"
	ProjectInProgress ProjectStatus = "EM_ANDAMENTO"
	ProjectConcluded  ProjectStatus = "CONCLUIDO"
)

// Project is a unit of work owned by a user and decomposed into tasks.
type Project struct {
	ID          string        `db:"id" validate:"required,entity_id"`
	Title       string        `db:"title" validate:"required"`
	Description string        `db:"description"`
	Status      ProjectStatus `db:"status" validate:"required"`
	UserID      string        `db:"user_id" validate:"required,entity_id"`
	CreatedAt   time.Time     `db:"created_at"`
	CompletedAt *time.Time    `db:"completed_at"`

	owner *User
}

// NewProject builds a not-yet-started project owned by userID. An empty id
// gets a generated identifier.
func NewProject(id, title, description, userID string) *Project {
	return &Project{
		ID:          idOrNew(id),
		Title:       title,
		Description: description,
		Status:      ProjectNotStarted,
		UserID:      userID,
	}
}

// Validate reports whether the project may be persisted.
func (p *Project) Validate() error {
	return validation.Struct("project", p)
}

// Owner returns the cached owner reference, which may be nil.
func (p *Project) Owner() *User { return p.owner }

// SetOwner caches the owner reference and synchronizes UserID in the same
// call.
func (p *Project) SetOwner(u *User) {
	p.owner = u
	if u != nil {
		p.UserID = u.ID
	}
}

// Start moves the project into progress.
func (p *Project) Start() {
	p.Status = ProjectInProgress
}

// Conclude marks the project concluded at the given instant. The completion
// timestamp is set only by this transition.
func (p *Project) Conclude(at time.Time) {
	p.Status = ProjectConcluded
	p.CompletedAt = &at
}

// Concluded reports whether the project reached its final state.
func (p *Project) Concluded() bool {
	return p.Status == ProjectConcluded
}
