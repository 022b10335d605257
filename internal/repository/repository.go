// Package repository defines the persistence contracts for the six entity
// kinds. All five hard-deleted kinds follow the same convention: FindByID
// returns apperrors.ErrNotFound for a missing row (never a nil result),
// Update and DeleteRow return apperrors.ErrNotFound when zero rows are
// affected, and Save maps constraint violations onto the apperrors taxonomy.
// User is the exception: its delete is a logical deactivation and its reads
// only see active rows.
//
// Row-level operations take an sqlx.ExtContext so they can run either
// directly on the connection pool or inside the cascade coordinator's
// transaction.
package repository

import (
	"context"
	"time"

	"github.com/colabhub/colabhub/internal/domain"
	"github.com/jmoiron/sqlx"
)

// UserRepository persists users. Deletion is logical: Deactivate clears the
// active flag and every read filters on it, so a deactivated user behaves as
// not-found while the rows referencing it stay fetchable.
type UserRepository interface {
	Save(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error
	Deactivate(ctx context.Context, ext sqlx.ExtContext, id string) error

	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// Authenticate returns the active user matching both email and password
	// hash, or apperrors.ErrNotFound.
	Authenticate(ctx context.Context, email, passwordHash string) (*domain.User, error)
	UpdatePassword(ctx context.Context, ext sqlx.ExtContext, id, newHash string) error

	// ResetPasswordByEmail reports whether any active user matched the email.
	ResetPasswordByEmail(ctx context.Context, ext sqlx.ExtContext, email, newHash string) (bool, error)

	FindBySkill(ctx context.Context, skill string) ([]domain.User, error)

	// ListWithTasksInProgress returns active users responsible for at least
	// one task currently in progress.
	ListWithTasksInProgress(ctx context.Context) ([]domain.User, error)

	// Stats counts the user's owned projects, assigned tasks, authored
	// solutions and given ratings, and averages the ratings received across
	// the user's authored solutions (0.0 when none).
	Stats(ctx context.Context, userID string) (*domain.UserStats, error)
}

// ProfileRepository persists user profiles. A user has at most one profile,
// enforced by a unique constraint on user_id.
type ProfileRepository interface {
	Save(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	ListAll(ctx context.Context) ([]domain.Profile, error)
	Update(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error
	DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error

	// Upsert inserts the profile or, when the user already has one, replaces
	// its bio, photo and skills.
	Upsert(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error
}

// ProjectRepository persists projects and their project-scoped aggregates.
type ProjectRepository interface {
	Save(ctx context.Context, ext sqlx.ExtContext, project *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	ListAll(ctx context.Context) ([]domain.Project, error)
	Update(ctx context.Context, ext sqlx.ExtContext, project *domain.Project) error

	// DeleteRow removes only the project row. Dependent tasks are the
	// cascade coordinator's responsibility.
	DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error

	ListByOwner(ctx context.Context, userID string) ([]domain.Project, error)
	ListActive(ctx context.Context) ([]domain.Project, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Project, error)

	// Complete sets the project status to CONCLUIDO and stamps completed_at.
	Complete(ctx context.Context, ext sqlx.ExtContext, id string, at time.Time) error

	// Progress returns the percentage of the project's tasks in status
	// CONCLUIDA, 0.0 for a project without tasks.
	Progress(ctx context.Context, id string) (float64, error)

	StatusCounts(ctx context.Context) (map[domain.ProjectStatus]int64, error)

	// TeamMembers returns the distinct users responsible for the project's
	// tasks.
	TeamMembers(ctx context.Context, id string) ([]domain.User, error)
}

// TaskRepository persists tasks and their task-scoped aggregates.
type TaskRepository interface {
	Save(ctx context.Context, ext sqlx.ExtContext, task *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	ListAll(ctx context.Context) ([]domain.Task, error)
	Update(ctx context.Context, ext sqlx.ExtContext, task *domain.Task) error
	DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error

	// ListByProject runs on ext so the cascade coordinator can read a
	// consistent snapshot inside its transaction.
	ListByProject(ctx context.Context, ext sqlx.ExtContext, projectID string) ([]domain.Task, error)

	ListByAssignee(ctx context.Context, userID string) ([]domain.Task, error)
	ListPending(ctx context.Context) ([]domain.Task, error)
	ListByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error)

	// ListOverdue returns unconcluded tasks whose deadline already passed.
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Task, error)

	Complete(ctx context.Context, ext sqlx.ExtContext, id string, at time.Time) error
	SetPriority(ctx context.Context, ext sqlx.ExtContext, id string, priority domain.TaskPriority) error

	CountsByStatus(ctx context.Context) (map[domain.TaskStatus]int64, error)
	CountsByPriority(ctx context.Context) (map[domain.TaskPriority]int64, error)
	AssigneePerformance(ctx context.Context) ([]domain.AssigneePerformance, error)
}

// SolutionRepository persists solutions and their listings.
type SolutionRepository interface {
	Save(ctx context.Context, ext sqlx.ExtContext, solution *domain.Solution) error
	FindByID(ctx context.Context, id string) (*domain.Solution, error)
	ListAll(ctx context.Context) ([]domain.Solution, error)
	Update(ctx context.Context, ext sqlx.ExtContext, solution *domain.Solution) error
	DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error

	// ListByTask runs on ext for the same reason as TaskRepository.ListByProject.
	ListByTask(ctx context.Context, ext sqlx.ExtContext, taskID string) ([]domain.Solution, error)

	ListByAuthor(ctx context.Context, userID string) ([]domain.Solution, error)
	ListByStatus(ctx context.Context, status domain.SolutionStatus) ([]domain.Solution, error)

	// ListRecent returns up to limit solutions, most recent submission first.
	// A non-positive limit returns everything.
	ListRecent(ctx context.Context, limit int) ([]domain.Solution, error)

	// ListPopular returns up to limit solutions ordered by descending average
	// rating. A non-positive limit returns everything.
	ListPopular(ctx context.Context, limit int) ([]domain.Solution, error)

	SetStatus(ctx context.Context, ext sqlx.ExtContext, id string, status domain.SolutionStatus) error
	CountByAuthor(ctx context.Context, userID string) (int64, error)
}

// RatingRepository persists ratings and answers the rating aggregates.
type RatingRepository interface {
	Save(ctx context.Context, ext sqlx.ExtContext, rating *domain.Rating) error
	FindByID(ctx context.Context, id string) (*domain.Rating, error)
	ListAll(ctx context.Context) ([]domain.Rating, error)
	Update(ctx context.Context, ext sqlx.ExtContext, rating *domain.Rating) error
	DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error

	// DeleteBySolution removes every rating of the solution and returns how
	// many rows went away. Zero is not an error.
	DeleteBySolution(ctx context.Context, ext sqlx.ExtContext, solutionID string) (int64, error)

	ListBySolution(ctx context.Context, solutionID string) ([]domain.Rating, error)
	ListByRater(ctx context.Context, userID string) ([]domain.Rating, error)

	// AverageForSolution returns the mean score, exactly 0.0 when the
	// solution has no ratings.
	AverageForSolution(ctx context.Context, solutionID string) (float64, error)
	AverageForSolutionBetween(ctx context.Context, solutionID string, from, to time.Time) (float64, error)

	OverallStats(ctx context.Context) (*domain.RatingStats, error)

	// Ranking returns up to limit solutions with at least minRatings ratings,
	// ordered by descending average, ties broken by ascending solution id. A
	// non-positive limit returns every qualifying solution.
	Ranking(ctx context.Context, limit int, minRatings int64) ([]domain.RankingEntry, error)

	ScoreDistribution(ctx context.Context) (map[int]int64, error)
}
