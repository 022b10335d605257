package service

import (
	"context"
	"time"

	"github.com/colabhub/colabhub/internal/domain"
	"github.com/colabhub/colabhub/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type UserRepositoryMock struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) Save(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error {
	args := m.Called(ctx, ext, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepositoryMock) ListAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *UserRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error {
	args := m.Called(ctx, ext, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) Deactivate(ctx context.Context, ext sqlx.ExtContext, id string) error {
	args := m.Called(ctx, ext, id)
	return args.Error(0)
}

func (m *UserRepositoryMock) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepositoryMock) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) Authenticate(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	args := m.Called(ctx, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepositoryMock) UpdatePassword(ctx context.Context, ext sqlx.ExtContext, id, newHash string) error {
	args := m.Called(ctx, ext, id, newHash)
	return args.Error(0)
}

func (m *UserRepositoryMock) ResetPasswordByEmail(ctx context.Context, ext sqlx.ExtContext, email, newHash string) (bool, error) {
	args := m.Called(ctx, ext, email, newHash)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) FindBySkill(ctx context.Context, skill string) ([]domain.User, error) {
	args := m.Called(ctx, skill)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *UserRepositoryMock) ListWithTasksInProgress(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *UserRepositoryMock) Stats(ctx context.Context, userID string) (*domain.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserStats), args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

var _ repository.ProfileRepository = (*ProfileRepositoryMock)(nil)

func (m *ProfileRepositoryMock) Save(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error {
	args := m.Called(ctx, ext, profile)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *ProfileRepositoryMock) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *ProfileRepositoryMock) ListAll(ctx context.Context) ([]domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *ProfileRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error {
	args := m.Called(ctx, ext, profile)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	args := m.Called(ctx, ext, id)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) Upsert(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error {
	args := m.Called(ctx, ext, profile)
	return args.Error(0)
}

type ProjectRepositoryMock struct {
	mock.Mock
}

var _ repository.ProjectRepository = (*ProjectRepositoryMock)(nil)

func (m *ProjectRepositoryMock) Save(ctx context.Context, ext sqlx.ExtContext, project *domain.Project) error {
	args := m.Called(ctx, ext, project)
	return args.Error(0)
}

func (m *ProjectRepositoryMock) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *ProjectRepositoryMock) ListAll(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *ProjectRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, project *domain.Project) error {
	args := m.Called(ctx, ext, project)
	return args.Error(0)
}

func (m *ProjectRepositoryMock) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	args := m.Called(ctx, ext, id)
	return args.Error(0)
}

func (m *ProjectRepositoryMock) ListByOwner(ctx context.Context, userID string) ([]domain.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *ProjectRepositoryMock) ListActive(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *ProjectRepositoryMock) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Project, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *ProjectRepositoryMock) Complete(ctx context.Context, ext sqlx.ExtContext, id string, at time.Time) error {
	args := m.Called(ctx, ext, id, at)
	return args.Error(0)
}

func (m *ProjectRepositoryMock) Progress(ctx context.Context, id string) (float64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(float64), args.Error(1)
}

func (m *ProjectRepositoryMock) StatusCounts(ctx context.Context) (map[domain.ProjectStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[domain.ProjectStatus]int64), args.Error(1)
}

func (m *ProjectRepositoryMock) TeamMembers(ctx context.Context, id string) ([]domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.User), args.Error(1)
}

type TaskRepositoryMock struct {
	mock.Mock
}

var _ repository.TaskRepository = (*TaskRepositoryMock)(nil)

func (m *TaskRepositoryMock) Save(ctx context.Context, ext sqlx.ExtContext, task *domain.Task) error {
	args := m.Called(ctx, ext, task)
	return args.Error(0)
}

func (m *TaskRepositoryMock) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) ListAll(ctx context.Context) ([]domain.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, task *domain.Task) error {
	args := m.Called(ctx, ext, task)
	return args.Error(0)
}

func (m *TaskRepositoryMock) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	args := m.Called(ctx, ext, id)
	return args.Error(0)
}

func (m *TaskRepositoryMock) ListByProject(ctx context.Context, ext sqlx.ExtContext, projectID string) ([]domain.Task, error) {
	args := m.Called(ctx, ext, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) ListByAssignee(ctx context.Context, userID string) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) ListPending(ctx context.Context) ([]domain.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) ListByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error) {
	args := m.Called(ctx, priority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) ListOverdue(ctx context.Context, now time.Time) ([]domain.Task, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *TaskRepositoryMock) Complete(ctx context.Context, ext sqlx.ExtContext, id string, at time.Time) error {
	args := m.Called(ctx, ext, id, at)
	return args.Error(0)
}

func (m *TaskRepositoryMock) SetPriority(ctx context.Context, ext sqlx.ExtContext, id string, priority domain.TaskPriority) error {
	args := m.Called(ctx, ext, id, priority)
	return args.Error(0)
}

func (m *TaskRepositoryMock) CountsByStatus(ctx context.Context) (map[domain.TaskStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[domain.TaskStatus]int64), args.Error(1)
}

func (m *TaskRepositoryMock) CountsByPriority(ctx context.Context) (map[domain.TaskPriority]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[domain.TaskPriority]int64), args.Error(1)
}

func (m *TaskRepositoryMock) AssigneePerformance(ctx context.Context) ([]domain.AssigneePerformance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.AssigneePerformance), args.Error(1)
}

type SolutionRepositoryMock struct {
	mock.Mock
}

var _ repository.SolutionRepository = (*SolutionRepositoryMock)(nil)

func (m *SolutionRepositoryMock) Save(ctx context.Context, ext sqlx.ExtContext, solution *domain.Solution) error {
	args := m.Called(ctx, ext, solution)
	return args.Error(0)
}

func (m *SolutionRepositoryMock) FindByID(ctx context.Context, id string) (*domain.Solution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Solution), args.Error(1)
}

func (m *SolutionRepositoryMock) ListAll(ctx context.Context) ([]domain.Solution, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Solution), args.Error(1)
}

func (m *SolutionRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, solution *domain.Solution) error {
	args := m.Called(ctx, ext, solution)
	return args.Error(0)
}

func (m *SolutionRepositoryMock) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	args := m.Called(ctx, ext, id)
	return args.Error(0)
}

func (m *SolutionRepositoryMock) ListByTask(ctx context.Context, ext sqlx.ExtContext, taskID string) ([]domain.Solution, error) {
	args := m.Called(ctx, ext, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Solution), args.Error(1)
}

func (m *SolutionRepositoryMock) ListByAuthor(ctx context.Context, userID string) ([]domain.Solution, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Solution), args.Error(1)
}

func (m *SolutionRepositoryMock) ListByStatus(ctx context.Context, status domain.SolutionStatus) ([]domain.Solution, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Solution), args.Error(1)
}

func (m *SolutionRepositoryMock) ListRecent(ctx context.Context, limit int) ([]domain.Solution, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Solution), args.Error(1)
}

func (m *SolutionRepositoryMock) ListPopular(ctx context.Context, limit int) ([]domain.Solution, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Solution), args.Error(1)
}

func (m *SolutionRepositoryMock) SetStatus(ctx context.Context, ext sqlx.ExtContext, id string, status domain.SolutionStatus) error {
	args := m.Called(ctx, ext, id, status)
	return args.Error(0)
}

func (m *SolutionRepositoryMock) CountByAuthor(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type RatingRepositoryMock struct {
	mock.Mock
}

var _ repository.RatingRepository = (*RatingRepositoryMock)(nil)

func (m *RatingRepositoryMock) Save(ctx context.Context, ext sqlx.ExtContext, rating *domain.Rating) error {
	args := m.Called(ctx, ext, rating)
	return args.Error(0)
}

func (m *RatingRepositoryMock) FindByID(ctx context.Context, id string) (*domain.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *RatingRepositoryMock) ListAll(ctx context.Context) ([]domain.Rating, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Rating), args.Error(1)
}

func (m *RatingRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, rating *domain.Rating) error {
	args := m.Called(ctx, ext, rating)
	return args.Error(0)
}

func (m *RatingRepositoryMock) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	args := m.Called(ctx, ext, id)
	return args.Error(0)
}

func (m *RatingRepositoryMock) DeleteBySolution(ctx context.Context, ext sqlx.ExtContext, solutionID string) (int64, error) {
	args := m.Called(ctx, ext, solutionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RatingRepositoryMock) ListBySolution(ctx context.Context, solutionID string) ([]domain.Rating, error) {
	args := m.Called(ctx, solutionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Rating), args.Error(1)
}

func (m *RatingRepositoryMock) ListByRater(ctx context.Context, userID string) ([]domain.Rating, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Rating), args.Error(1)
}

func (m *RatingRepositoryMock) AverageForSolution(ctx context.Context, solutionID string) (float64, error) {
	args := m.Called(ctx, solutionID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *RatingRepositoryMock) AverageForSolutionBetween(ctx context.Context, solutionID string, from, to time.Time) (float64, error) {
	args := m.Called(ctx, solutionID, from, to)
	return args.Get(0).(float64), args.Error(1)
}

func (m *RatingRepositoryMock) OverallStats(ctx context.Context) (*domain.RatingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.RatingStats), args.Error(1)
}

func (m *RatingRepositoryMock) Ranking(ctx context.Context, limit int, minRatings int64) ([]domain.RankingEntry, error) {
	args := m.Called(ctx, limit, minRatings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.RankingEntry), args.Error(1)
}

func (m *RatingRepositoryMock) ScoreDistribution(ctx context.Context) (map[int]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[int]int64), args.Error(1)
}
