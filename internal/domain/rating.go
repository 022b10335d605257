package domain

import (
	"fmt"
	"time"

	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/validation"
)

// Score bounds for a rating. Scores outside [MinScore, MaxScore] are
// rejected at construction and on assignment, never clamped.
const (
	MinScore = 0
	MaxScore = 5
)

// Rating is a peer review of a solution: an integer score in [0,5] and an
// optional comment. It is the leaf of the ownership chain and has no
// dependents.
type Rating struct {
	ID         string    `db:"id" validate:"required,entity_id"`
	Score      int       `db:"score" validate:"gte=0,lte=5"`
	Comment    string    `db:"comment"`
	SolutionID string    `db:"solution_id" validate:"required,entity_id"`
	RaterID    string    `db:"rater_id" validate:"required,entity_id"`
	RatedAt    time.Time `db:"rated_at"`

	solution *Solution
	rater    *User
}

// NewRating builds a rating, rejecting out-of-range scores. An empty id gets
// a generated identifier.
func NewRating(id string, score int, comment, solutionID, raterID string) (*Rating, error) {
	if err := checkScore(score); err != nil {
		return nil, err
	}

	return &Rating{
		ID:         idOrNew(id),
		Score:      score,
		Comment:    comment,
		SolutionID: solutionID,
		RaterID:    raterID,
	}, nil
}

func checkScore(score int) error {
	if score < MinScore || score > MaxScore {
		return &apperrors.ValidationError{
			Entity:   "rating",
			Messages: []string{fmt.Sprintf("score %d is outside [%d,%d]", score, MinScore, MaxScore)},
		}
	}

	return nil
}

// SetScore assigns a new score, rejecting out-of-range values without
// modifying the rating.
func (r *Rating) SetScore(score int) error {
	if err := checkScore(score); err != nil {
		return err
	}
	r.Score = score

	return nil
}

// Validate reports whether the rating may be persisted.
func (r *Rating) Validate() error {
	return validation.Struct("rating", r)
}

// Solution returns the cached solution reference, which may be nil.
func (r *Rating) Solution() *Solution { return r.solution }

// SetSolution caches the solution reference and synchronizes SolutionID in
// the same call.
func (r *Rating) SetSolution(s *Solution) {
	r.solution = s
	if s != nil {
		r.SolutionID = s.ID
	}
}

// Rater returns the cached rating-user reference, which may be nil.
func (r *Rating) Rater() *User { return r.rater }

// SetRater caches the rating user and synchronizes RaterID in the same call.
func (r *Rating) SetRater(u *User) {
	r.rater = u
	if u != nil {
		r.RaterID = u.ID
	}
}
