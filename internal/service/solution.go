package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/colabhub/colabhub/internal/repository"
	"github.com/jmoiron/sqlx"
)

// SolutionService handles solution submission, review and peer rating.
type SolutionService struct {
	BaseService
	ext       Database
	tasks     repository.TaskRepository
	solutions repository.SolutionRepository
	ratings   repository.RatingRepository
}

func NewSolutionService(
	db Database,
	log *slog.Logger,
	tasks repository.TaskRepository,
	solutions repository.SolutionRepository,
	ratings repository.RatingRepository,
) *SolutionService {
	return &SolutionService{
		BaseService: NewBaseService(db, log),
		ext:         db,
		tasks:       tasks,
		solutions:   solutions,
		ratings:     ratings,
	}
}

// Submit persists a new pending solution for the task.
func (s *SolutionService) Submit(ctx context.Context, id, title, description, taskID, authorID string) (*domain.Solution, error) {
	const op = "internal.service.solution.Submit"

	solution := domain.NewSolution(id, title, description, taskID, authorID)
	if err := s.solutions.Save(ctx, s.ext, solution); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("solution submitted",
		slog.String("solution_id", solution.ID),
		slog.String("task_id", taskID),
	)

	return solution, nil
}

// Approve accepts the solution and concludes its task, both inside one
// transaction.
func (s *SolutionService) Approve(ctx context.Context, id string, at time.Time) error {
	const op = "internal.service.solution.Approve"

	solution, err := s.solutions.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if err := s.solutions.SetStatus(ctx, tx, id, domain.SolutionApproved); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.tasks.Complete(ctx, tx, solution.TaskID, at); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
}

// Reject declines the solution; its task stays open.
func (s *SolutionService) Reject(ctx context.Context, id string) error {
	const op = "internal.service.solution.Reject"

	if err := s.solutions.SetStatus(ctx, s.ext, id, domain.SolutionRejected); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Rate records a peer rating of the solution. Authors must not rate their
// own work.
func (s *SolutionService) Rate(ctx context.Context, id string, score int, comment, raterID string) (*domain.Rating, error) {
	const op = "internal.service.solution.Rate"

	solution, err := s.solutions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if solution.AuthorID == raterID {
		return nil, fmt.Errorf("%s: %w: authors cannot rate their own solution", op, apperrors.ErrValidation)
	}

	rating, err := domain.NewRating("", score, comment, id, raterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ratings.Save(ctx, s.ext, rating); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rating, nil
}

func (s *SolutionService) ListByTask(ctx context.Context, taskID string) ([]domain.Solution, error) {
	const op = "internal.service.solution.ListByTask"

	solutions, err := s.solutions.ListByTask(ctx, s.ext, taskID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return solutions, nil
}

func (s *SolutionService) ListRecent(ctx context.Context, limit int) ([]domain.Solution, error) {
	const op = "internal.service.solution.ListRecent"

	solutions, err := s.solutions.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return solutions, nil
}

func (s *SolutionService) ListPopular(ctx context.Context, limit int) ([]domain.Solution, error) {
	const op = "internal.service.solution.ListPopular"

	solutions, err := s.solutions.ListPopular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return solutions, nil
}
