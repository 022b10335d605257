package domain

import (
	"errors"
	"time"

	"github.com/colabhub/colabhub/internal/validation"
)

// SolutionStatus is the review state of a solution.
type SolutionStatus string

const (
	SolutionPending  SolutionStatus = "PENDENTE"
	SolutionApproved SolutionStatus = "APROVADA"
	SolutionRejected SolutionStatus = "REJEITADA"
)

// Solution is a proposed answer to a task, authored by a user and reviewed
// through peer ratings.
type Solution struct {
	ID          string         `db:"id" validate:"required,entity_id"`
	Title       string         `db:"title" validate:"required"`
	Description string         `db:"description"`
	Status      SolutionStatus `db:"status" validate:"required"`
	TaskID      string         `db:"task_id" validate:"required,entity_id"`
	AuthorID    string         `db:"author_id" validate:"required,entity_id"`
	SubmittedAt time.Time      `db:"submitted_at"`

	ratings []Rating
	task    *Task
	author  *User
}

// NewSolution builds a pending solution. An empty id gets a generated
// identifier.
func NewSolution(id, title, description, taskID, authorID string) *Solution {
	return &Solution{
		ID:          idOrNew(id),
		Title:       title,
		Description: description,
		Status:      SolutionPending,
		TaskID:      taskID,
		AuthorID:    authorID,
	}
}

// Validate reports whether the solution may be persisted.
func (s *Solution) Validate() error {
	return validation.Struct("solution", s)
}

// Task returns the cached task reference, which may be nil.
func (s *Solution) Task() *Task { return s.task }

// SetTask caches the task reference and synchronizes TaskID in the same
// call.
func (s *Solution) SetTask(t *Task) {
	s.task = t
	if t != nil {
		s.TaskID = t.ID
	}
}

// Author returns the cached author reference, which may be nil.
func (s *Solution) Author() *User { return s.author }

// SetAuthor caches the author and synchronizes AuthorID in the same call.
func (s *Solution) SetAuthor(u *User) {
	s.author = u
	if u != nil {
		s.AuthorID = u.ID
	}
}

// Ratings returns a snapshot copy of the attached ratings. Mutating the
// returned slice does not affect the solution; use AddRating/RemoveRating.
func (s *Solution) Ratings() []Rating {
	snapshot := make([]Rating, len(s.ratings))
	copy(snapshot, s.ratings)

	return snapshot
}

// AddRating attaches a rating to the in-memory collection.
func (s *Solution) AddRating(r *Rating) error {
	if r == nil {
		return errors.New("rating must not be nil")
	}
	s.ratings = append(s.ratings, *r)

	return nil
}

// RemoveRating detaches the rating with the given identifier; unknown
// identifiers are a no-op.
func (s *Solution) RemoveRating(ratingID string) {
	for i, r := range s.ratings {
		if r.ID == ratingID {
			s.ratings = append(s.ratings[:i], s.ratings[i+1:]...)
			return
		}
	}
}

// AverageRating folds the attached ratings into their mean. A solution with
// no ratings averages exactly 0.0.
func (s *Solution) AverageRating() float64 {
	if len(s.ratings) == 0 {
		return 0.0
	}

	sum := 0
	for _, r := range s.ratings {
		sum += r.Score
	}

	return float64(sum) / float64(len(s.ratings))
}

// Quality derives the tier of the attached ratings' average under the named
// scheme.
func (s *Solution) Quality(scheme QualityScheme) QualityTier {
	return QualityFor(s.AverageRating(), scheme)
}

// Approved reports whether the solution was accepted.
func (s *Solution) Approved() bool {
	return s.Status == SolutionApproved
}

// Approve marks the solution accepted. When concludeTask is true and a task
// reference is cached, the task is concluded at the same instant.
func (s *Solution) Approve(concludeTask bool, at time.Time) {
	s.Status = SolutionApproved
	if concludeTask && s.task != nil {
		s.task.Conclude(at)
	}
}
