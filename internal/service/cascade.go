package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/repository"
	"github.com/jmoiron/sqlx"
)

// CascadeDeleter removes an entity together with everything hanging off it:
// project -> tasks -> solutions -> ratings. The schema carries plain foreign
// keys without ON DELETE CASCADE, so the coordinator issues the deletes
// itself, children first, all inside one transaction. Any failure aborts the
// whole unit of work and surfaces as apperrors.ErrCascadeAborted; readers
// never observe a half-deleted subtree.
type CascadeDeleter struct {
	BaseService
	users     repository.UserRepository
	tasks     repository.TaskRepository
	projects  repository.ProjectRepository
	solutions repository.SolutionRepository
	ratings   repository.RatingRepository
}

func NewCascadeDeleter(
	db Transactor,
	log *slog.Logger,
	users repository.UserRepository,
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	solutions repository.SolutionRepository,
	ratings repository.RatingRepository,
) *CascadeDeleter {
	return &CascadeDeleter{
		BaseService: NewBaseService(db, log),
		users:       users,
		projects:    projects,
		tasks:       tasks,
		solutions:   solutions,
		ratings:     ratings,
	}
}

// DeleteProject removes the project and its whole subtree atomically.
func (s *CascadeDeleter) DeleteProject(ctx context.Context, projectID string) error {
	const op = "internal.service.cascade.DeleteProject"

	s.log.Info("cascading project delete", slog.String("project_id", projectID))

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		tasks, err := s.tasks.ListByProject(ctx, tx, projectID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		for _, task := range tasks {
			if err := s.deleteTaskTree(ctx, tx, op, task.ID); err != nil {
				return err
			}
		}

		if err := s.projects.DeleteRow(ctx, tx, projectID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: project '%s': %w", apperrors.ErrCascadeAborted, projectID, err)
	}

	return nil
}

// DeleteTask removes the task and its solutions and ratings atomically.
func (s *CascadeDeleter) DeleteTask(ctx context.Context, taskID string) error {
	const op = "internal.service.cascade.DeleteTask"

	s.log.Info("cascading task delete", slog.String("task_id", taskID))

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		return s.deleteTaskTree(ctx, tx, op, taskID)
	})
	if err != nil {
		return fmt.Errorf("%w: task '%s': %w", apperrors.ErrCascadeAborted, taskID, err)
	}

	return nil
}

// DeleteSolution removes the solution and its ratings atomically.
func (s *CascadeDeleter) DeleteSolution(ctx context.Context, solutionID string) error {
	const op = "internal.service.cascade.DeleteSolution"

	s.log.Info("cascading solution delete", slog.String("solution_id", solutionID))

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		return s.deleteSolutionTree(ctx, tx, op, solutionID)
	})
	if err != nil {
		return fmt.Errorf("%w: solution '%s': %w", apperrors.ErrCascadeAborted, solutionID, err)
	}

	return nil
}

// DeleteRating removes a single rating. It is the leaf of the chain: nothing
// depends on a rating, so a failure is a plain row-delete error (a missing id
// surfaces as ErrNotFound), never an aborted cascade.
func (s *CascadeDeleter) DeleteRating(ctx context.Context, ratingID string) error {
	const op = "internal.service.cascade.DeleteRating"

	return s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if err := s.ratings.DeleteRow(ctx, tx, ratingID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
}

// DeactivateUser is the user's delete. It is logical, never cascades, and
// leaves the user's projects, tasks, solutions and ratings in place.
func (s *CascadeDeleter) DeactivateUser(ctx context.Context, userID string) error {
	const op = "internal.service.cascade.DeactivateUser"

	return s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if err := s.users.Deactivate(ctx, tx, userID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
}

// deleteTaskTree deletes the task's solutions (ratings first) and then the
// task row, all on the caller's transaction.
func (s *CascadeDeleter) deleteTaskTree(ctx context.Context, tx *sqlx.Tx, op, taskID string) error {
	solutions, err := s.solutions.ListByTask(ctx, tx, taskID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, solution := range solutions {
		if err := s.deleteSolutionTree(ctx, tx, op, solution.ID); err != nil {
			return err
		}
	}

	if err := s.tasks.DeleteRow(ctx, tx, taskID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// deleteSolutionTree deletes the solution's ratings and then the solution
// row, all on the caller's transaction.
func (s *CascadeDeleter) deleteSolutionTree(ctx context.Context, tx *sqlx.Tx, op, solutionID string) error {
	deleted, err := s.ratings.DeleteBySolution(ctx, tx, solutionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if deleted > 0 {
		s.log.Debug("deleted ratings of solution",
			slog.String("solution_id", solutionID),
			slog.Int64("count", deleted),
		)
	}

	if err := s.solutions.DeleteRow(ctx, tx, solutionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
