package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/colabhub/colabhub/internal/domain"
	"github.com/colabhub/colabhub/internal/repository"
	"github.com/jmoiron/sqlx"
)

// TaskService handles the task lifecycle within a project.
type TaskService struct {
	BaseService
	ext      Database
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
}

func NewTaskService(db Database, log *slog.Logger, tasks repository.TaskRepository, projects repository.ProjectRepository) *TaskService {
	return &TaskService{
		BaseService: NewBaseService(db, log),
		ext:         db,
		tasks:       tasks,
		projects:    projects,
	}
}

// Create persists a new pending task. Creating the first task also moves a
// not-yet-started project into progress, inside one transaction.
func (s *TaskService) Create(ctx context.Context, id, title, description, projectID, assigneeID string) (*domain.Task, error) {
	const op = "internal.service.task.Create"

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	task := domain.NewTask(id, title, description, projectID, assigneeID)

	err = s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if err := s.tasks.Save(ctx, tx, task); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if project.Status == domain.ProjectNotStarted {
			project.Start()
			if err := s.projects.Update(ctx, tx, project); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("project_id", projectID),
	)

	return task, nil
}

func (s *TaskService) Update(ctx context.Context, task *domain.Task) error {
	const op = "internal.service.task.Update"

	if err := s.tasks.Update(ctx, s.ext, task); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Complete concludes the task at the given instant.
func (s *TaskService) Complete(ctx context.Context, id string, at time.Time) error {
	const op = "internal.service.task.Complete"

	if err := s.tasks.Complete(ctx, s.ext, id, at); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *TaskService) SetPriority(ctx context.Context, id string, priority domain.TaskPriority) error {
	const op = "internal.service.task.SetPriority"

	if err := s.tasks.SetPriority(ctx, s.ext, id, priority); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *TaskService) ListByAssignee(ctx context.Context, userID string) ([]domain.Task, error) {
	const op = "internal.service.task.ListByAssignee"

	tasks, err := s.tasks.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tasks, nil
}

// ListOverdue returns unconcluded tasks whose deadline passed before now.
func (s *TaskService) ListOverdue(ctx context.Context, now time.Time) ([]domain.Task, error) {
	const op = "internal.service.task.ListOverdue"

	tasks, err := s.tasks.ListOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tasks, nil
}
