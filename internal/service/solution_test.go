package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSolutionService(t *testing.T) (*SolutionService, *TaskRepositoryMock, *SolutionRepositoryMock, *RatingRepositoryMock, sqlmock.Sqlmock) {
	t.Helper()

	db, smock := newMockDB(t)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tasks := new(TaskRepositoryMock)
	solutions := new(SolutionRepositoryMock)
	ratings := new(RatingRepositoryMock)

	return NewSolutionService(db, log, tasks, solutions, ratings), tasks, solutions, ratings, smock
}

func TestSolutionService_Approve_ConcludesTaskInSameTx(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	svc, tasks, solutions, _, smock := newSolutionService(t)
	smock.ExpectBegin()
	smock.ExpectCommit()

	solutions.On("FindByID", ctx, "s-1").
		Return(&domain.Solution{ID: "s-1", TaskID: "t-1", Status: domain.SolutionPending}, nil).Once()
	solutions.On("SetStatus", ctx, mock.Anything, "s-1", domain.SolutionApproved).Return(nil).Once()
	tasks.On("Complete", ctx, mock.Anything, "t-1", at).Return(nil).Once()

	require.NoError(t, svc.Approve(ctx, "s-1", at))

	solutions.AssertExpectations(t)
	tasks.AssertExpectations(t)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestSolutionService_Approve_RollsBackWhenTaskUpdateFails(t *testing.T) {
	ctx := context.Background()

	svc, tasks, solutions, _, smock := newSolutionService(t)
	smock.ExpectBegin()
	smock.ExpectRollback()

	solutions.On("FindByID", ctx, "s-1").
		Return(&domain.Solution{ID: "s-1", TaskID: "t-1"}, nil).Once()
	solutions.On("SetStatus", ctx, mock.Anything, "s-1", domain.SolutionApproved).Return(nil).Once()
	tasks.On("Complete", ctx, mock.Anything, "t-1", mock.AnythingOfType("time.Time")).
		Return(errors.New("deadlock detected")).Once()

	err := svc.Approve(ctx, "s-1", time.Now())

	require.Error(t, err)
	assert.NoError(t, smock.ExpectationsWereMet(), "the transaction must roll back")
}

func TestSolutionService_Rate(t *testing.T) {
	ctx := context.Background()

	t.Run("author cannot rate own solution", func(t *testing.T) {
		svc, _, solutions, ratings, _ := newSolutionService(t)

		solutions.On("FindByID", ctx, "s-1").
			Return(&domain.Solution{ID: "s-1", AuthorID: "u-1"}, nil).Once()

		rating, err := svc.Rate(ctx, "s-1", 5, "great", "u-1")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Nil(t, rating)
		ratings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("out of range score is rejected before the write", func(t *testing.T) {
		svc, _, solutions, ratings, _ := newSolutionService(t)

		solutions.On("FindByID", ctx, "s-1").
			Return(&domain.Solution{ID: "s-1", AuthorID: "u-1"}, nil).Once()

		rating, err := svc.Rate(ctx, "s-1", 9, "", "u-2")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Nil(t, rating)
		ratings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		svc, _, solutions, ratings, _ := newSolutionService(t)

		solutions.On("FindByID", ctx, "s-1").
			Return(&domain.Solution{ID: "s-1", AuthorID: "u-1"}, nil).Once()
		ratings.On("Save", ctx, mock.Anything, mock.MatchedBy(func(r *domain.Rating) bool {
			return r.SolutionID == "s-1" && r.RaterID == "u-2" && r.Score == 4
		})).Return(nil).Once()

		rating, err := svc.Rate(ctx, "s-1", 4, "nice", "u-2")

		require.NoError(t, err)
		assert.NotEmpty(t, rating.ID)
		ratings.AssertExpectations(t)
	})
}
