package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCascadeDeleter(t *testing.T) (
	*CascadeDeleter,
	*UserRepositoryMock,
	*ProjectRepositoryMock,
	*TaskRepositoryMock,
	*SolutionRepositoryMock,
	*RatingRepositoryMock,
	sqlmock.Sqlmock,
) {
	t.Helper()

	db, smock := newMockDB(t)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	users := new(UserRepositoryMock)
	projects := new(ProjectRepositoryMock)
	tasks := new(TaskRepositoryMock)
	solutions := new(SolutionRepositoryMock)
	ratings := new(RatingRepositoryMock)

	deleter := NewCascadeDeleter(db, log, users, projects, tasks, solutions, ratings)

	return deleter, users, projects, tasks, solutions, ratings, smock
}

func TestCascadeDeleter_DeleteProject(t *testing.T) {
	ctx := context.Background()

	deleter, _, projects, tasks, solutions, ratings, smock := newCascadeDeleter(t)
	smock.ExpectBegin()
	smock.ExpectCommit()

	// One project, two tasks, one solution under the first task.
	var order []string
	record := func(step string) func(mock.Arguments) {
		return func(mock.Arguments) { order = append(order, step) }
	}

	tasks.On("ListByProject", ctx, mock.Anything, "p-1").
		Return([]domain.Task{{ID: "t-1"}, {ID: "t-2"}}, nil).Once()

	solutions.On("ListByTask", ctx, mock.Anything, "t-1").
		Return([]domain.Solution{{ID: "s-1"}}, nil).Once()
	solutions.On("ListByTask", ctx, mock.Anything, "t-2").
		Return([]domain.Solution{}, nil).Once()

	ratings.On("DeleteBySolution", ctx, mock.Anything, "s-1").
		Return(int64(3), nil).Run(record("ratings:s-1")).Once()
	solutions.On("DeleteRow", ctx, mock.Anything, "s-1").
		Return(nil).Run(record("solution:s-1")).Once()
	tasks.On("DeleteRow", ctx, mock.Anything, "t-1").
		Return(nil).Run(record("task:t-1")).Once()
	tasks.On("DeleteRow", ctx, mock.Anything, "t-2").
		Return(nil).Run(record("task:t-2")).Once()
	projects.On("DeleteRow", ctx, mock.Anything, "p-1").
		Return(nil).Run(record("project:p-1")).Once()

	require.NoError(t, deleter.DeleteProject(ctx, "p-1"))

	// Children always go before their parent.
	assert.Equal(t, []string{
		"ratings:s-1", "solution:s-1", "task:t-1", "task:t-2", "project:p-1",
	}, order)

	tasks.AssertExpectations(t)
	solutions.AssertExpectations(t)
	ratings.AssertExpectations(t)
	projects.AssertExpectations(t)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestCascadeDeleter_DeleteProject_AbortsOnFailure(t *testing.T) {
	ctx := context.Background()

	deleter, _, projects, tasks, solutions, ratings, smock := newCascadeDeleter(t)
	smock.ExpectBegin()
	smock.ExpectRollback()

	tasks.On("ListByProject", ctx, mock.Anything, "p-1").
		Return([]domain.Task{{ID: "t-1"}}, nil).Once()
	solutions.On("ListByTask", ctx, mock.Anything, "t-1").
		Return([]domain.Solution{{ID: "s-1"}}, nil).Once()
	ratings.On("DeleteBySolution", ctx, mock.Anything, "s-1").
		Return(int64(0), nil).Once()
	solutions.On("DeleteRow", ctx, mock.Anything, "s-1").
		Return(errors.New("connection reset")).Once()

	err := deleter.DeleteProject(ctx, "p-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCascadeAborted)

	// Nothing above the failing step may run.
	tasks.AssertNotCalled(t, "DeleteRow", ctx, mock.Anything, "t-1")
	projects.AssertNotCalled(t, "DeleteRow", ctx, mock.Anything, "p-1")
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestCascadeDeleter_DeleteTask_PropagatesNotFound(t *testing.T) {
	ctx := context.Background()

	deleter, _, _, tasks, solutions, _, smock := newCascadeDeleter(t)
	smock.ExpectBegin()
	smock.ExpectRollback()

	solutions.On("ListByTask", ctx, mock.Anything, "t-404").
		Return([]domain.Solution{}, nil).Once()
	tasks.On("DeleteRow", ctx, mock.Anything, "t-404").
		Return(apperrors.ErrNotFound).Once()

	err := deleter.DeleteTask(ctx, "t-404")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCascadeAborted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestCascadeDeleter_DeleteSolution(t *testing.T) {
	ctx := context.Background()

	deleter, _, _, _, solutions, ratings, smock := newCascadeDeleter(t)
	smock.ExpectBegin()
	smock.ExpectCommit()

	ratings.On("DeleteBySolution", ctx, mock.Anything, "s-1").Return(int64(2), nil).Once()
	solutions.On("DeleteRow", ctx, mock.Anything, "s-1").Return(nil).Once()

	require.NoError(t, deleter.DeleteSolution(ctx, "s-1"))

	ratings.AssertExpectations(t)
	solutions.AssertExpectations(t)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestCascadeDeleter_DeleteRating_MissingIsPlainNotFound(t *testing.T) {
	ctx := context.Background()

	deleter, _, _, _, _, ratings, smock := newCascadeDeleter(t)
	smock.ExpectBegin()
	smock.ExpectRollback()

	ratings.On("DeleteRow", ctx, mock.Anything, "r-404").
		Return(apperrors.ErrNotFound).Once()

	err := deleter.DeleteRating(ctx, "r-404")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	// A rating has no dependents, so its delete never aborts a cascade.
	assert.NotErrorIs(t, err, apperrors.ErrCascadeAborted)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestCascadeDeleter_DeactivateUser_NeverCascades(t *testing.T) {
	ctx := context.Background()

	deleter, users, projects, tasks, solutions, ratings, smock := newCascadeDeleter(t)
	smock.ExpectBegin()
	smock.ExpectCommit()

	users.On("Deactivate", ctx, mock.Anything, "u-1").Return(nil).Once()

	require.NoError(t, deleter.DeactivateUser(ctx, "u-1"))

	users.AssertExpectations(t)
	projects.AssertExpectations(t)
	tasks.AssertExpectations(t)
	solutions.AssertExpectations(t)
	ratings.AssertExpectations(t)
	assert.NoError(t, smock.ExpectationsWereMet())
}
