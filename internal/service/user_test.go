package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *UserRepositoryMock, *ProfileRepositoryMock) {
	t.Helper()

	db, _ := newMockDB(t)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	users := new(UserRepositoryMock)
	profiles := new(ProfileRepositoryMock)

	return NewUserService(db, log, users, profiles), users, profiles
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, users, _ := newUserService(t)

		users.On("EmailExists", ctx, "ana@example.com").Return(false, nil).Once()
		users.On("Save", ctx, mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "ana@example.com" && u.Active && u.ID != ""
		})).Return(nil).Once()

		user, err := svc.Register(ctx, "", "Ana", "ana@example.com", "hash")

		require.NoError(t, err)
		assert.Equal(t, "Ana", user.Name)
		assert.True(t, user.Active)
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, users, _ := newUserService(t)

		users.On("EmailExists", ctx, "taken@example.com").Return(true, nil).Once()

		user, err := svc.Register(ctx, "", "Ana", "taken@example.com", "hash")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		assert.Nil(t, user)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong current password", func(t *testing.T) {
		db, smock := newMockDB(t)
		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		users := new(UserRepositoryMock)
		svc := NewUserService(db, log, users, new(ProfileRepositoryMock))

		smock.ExpectBegin()
		smock.ExpectRollback()

		users.On("FindByID", ctx, "u-1").
			Return(&domain.User{ID: "u-1", PasswordHash: "real-hash"}, nil).Once()

		err := svc.ChangePassword(ctx, "u-1", "wrong-hash", "new-hash")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, smock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		db, smock := newMockDB(t)
		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		users := new(UserRepositoryMock)
		svc := NewUserService(db, log, users, new(ProfileRepositoryMock))

		smock.ExpectBegin()
		smock.ExpectCommit()

		users.On("FindByID", ctx, "u-1").
			Return(&domain.User{ID: "u-1", PasswordHash: "old-hash"}, nil).Once()
		users.On("UpdatePassword", ctx, mock.Anything, "u-1", "new-hash").Return(nil).Once()

		require.NoError(t, svc.ChangePassword(ctx, "u-1", "old-hash", "new-hash"))
		users.AssertExpectations(t)
		assert.NoError(t, smock.ExpectationsWereMet())
	})
}

func TestUserService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newUserService(t)

	users.On("ResetPasswordByEmail", ctx, mock.Anything, "ghost@example.com", "new-hash").
		Return(false, nil).Once()

	matched, err := svc.ResetPassword(ctx, "ghost@example.com", "new-hash")

	require.NoError(t, err, "an unknown email is a no-op, not an error")
	assert.False(t, matched)
}

func TestUserService_SaveProfile_RequiresActiveUser(t *testing.T) {
	ctx := context.Background()
	svc, users, profiles := newUserService(t)

	users.On("FindByID", ctx, "u-gone").Return(nil, apperrors.ErrNotFound).Once()

	profile := domain.NewProfile("", "u-gone", "bio", "")
	err := svc.SaveProfile(ctx, profile)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	profiles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}
