package domain

import (
	"time"

	"github.com/colabhub/colabhub/internal/validation"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDENTE"
	TaskInProgress TaskStatus = "EM_ANDAMENTO"
	TaskConcluded  TaskStatus = "CONCLUIDA"
)

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "BAIXA"
	PriorityMedium TaskPriority = "MEDIA"
	PriorityHigh   TaskPriority = "ALTA"
)

// Task belongs to exactly one project and one responsible user, and collects
// competing solutions.
type Task struct {
	ID          string       `db:"id" validate:"required,entity_id"`
	Title       string       `db:"title" validate:"required"`
	Description string       `db:"description"`
	Status      TaskStatus   `db:"status" validate:"required"`
	Priority    TaskPriority `db:"priority" validate:"required"`
	ProjectID   string       `db:"project_id" validate:"required,entity_id"`
	AssigneeID  string       `db:"assignee_id" validate:"required,entity_id"`
	Deadline    *time.Time   `db:"deadline"`
	CreatedAt   time.Time    `db:"created_at"`
	CompletedAt *time.Time   `db:"completed_at"`

	project  *Project
	assignee *User
}

// NewTask builds a pending medium-priority task. An empty id gets a
// generated identifier.
func NewTask(id, title, description, projectID, assigneeID string) *Task {
	return &Task{
		ID:          idOrNew(id),
		Title:       title,
		Description: description,
		Status:      TaskPending,
		Priority:    PriorityMedium,
		ProjectID:   projectID,
		AssigneeID:  assigneeID,
	}
}

// Validate reports whether the task may be persisted.
func (t *Task) Validate() error {
	return validation.Struct("task", t)
}

// Project returns the cached project reference, which may be nil.
func (t *Task) Project() *Project { return t.project }

// SetProject caches the project reference and synchronizes ProjectID in the
// same call.
func (t *Task) SetProject(p *Project) {
	t.project = p
	if p != nil {
		t.ProjectID = p.ID
	}
}

// Assignee returns the cached responsible-user reference, which may be nil.
func (t *Task) Assignee() *User { return t.assignee }

// SetAssignee caches the responsible user and synchronizes AssigneeID in the
// same call.
func (t *Task) SetAssignee(u *User) {
	t.assignee = u
	if u != nil {
		t.AssigneeID = u.ID
	}
}

// Conclude marks the task done at the given instant.
func (t *Task) Conclude(at time.Time) {
	t.Status = TaskConcluded
	t.CompletedAt = &at
}

// Concluded reports whether the task reached its final state.
func (t *Task) Concluded() bool {
	return t.Status == TaskConcluded
}

// Overdue reports whether the task has a deadline in the past and was not
// concluded. Tasks without a deadline are never overdue.
func (t *Task) Overdue(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now) && !t.Concluded()
}
