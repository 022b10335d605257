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

// ProjectService handles the project lifecycle and project-level queries.
type ProjectService struct {
	BaseService
	ext      Database
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
}

func NewProjectService(db Database, log *slog.Logger, projects repository.ProjectRepository, tasks repository.TaskRepository) *ProjectService {
	return &ProjectService{
		BaseService: NewBaseService(db, log),
		ext:         db,
		projects:    projects,
		tasks:       tasks,
	}
}

// Create persists a new project owned by the given user.
func (s *ProjectService) Create(ctx context.Context, id, title, description, ownerID string) (*domain.Project, error) {
	const op = "internal.service.project.Create"

	project := domain.NewProject(id, title, description, ownerID)
	if err := s.projects.Save(ctx, s.ext, project); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("owner_id", ownerID),
	)

	return project, nil
}

// Complete finishes the project. Every task must already be concluded; the
// check and the status change run inside one transaction so a task slipping
// in concurrently cannot leave a completed project with open work.
func (s *ProjectService) Complete(ctx context.Context, id string, at time.Time) error {
	const op = "internal.service.project.Complete"

	return s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		tasks, err := s.tasks.ListByProject(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		for _, task := range tasks {
			if !task.Concluded() {
				return fmt.Errorf("%s: %w: task '%s' is not concluded", op, apperrors.ErrValidation, task.ID)
			}
		}

		if err := s.projects.Complete(ctx, tx, id, at); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
}

func (s *ProjectService) Update(ctx context.Context, project *domain.Project) error {
	const op = "internal.service.project.Update"

	if err := s.projects.Update(ctx, s.ext, project); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Progress returns the percentage of the project's tasks concluded, 0.0 for
// a project without tasks. The project must exist.
func (s *ProjectService) Progress(ctx context.Context, id string) (float64, error) {
	const op = "internal.service.project.Progress"

	if _, err := s.projects.FindByID(ctx, id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	progress, err := s.projects.Progress(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return progress, nil
}

func (s *ProjectService) ListByOwner(ctx context.Context, userID string) ([]domain.Project, error) {
	const op = "internal.service.project.ListByOwner"

	projects, err := s.projects.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

func (s *ProjectService) ListActive(ctx context.Context) ([]domain.Project, error) {
	const op = "internal.service.project.ListActive"

	projects, err := s.projects.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

func (s *ProjectService) TeamMembers(ctx context.Context, id string) ([]domain.User, error) {
	const op = "internal.service.project.TeamMembers"

	members, err := s.projects.TeamMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}
