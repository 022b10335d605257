package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/colabhub/colabhub/internal/repository"
	"github.com/jmoiron/sqlx"
)

// UserService handles registration, authentication and profile upkeep.
type UserService struct {
	BaseService
	ext      Database
	users    repository.UserRepository
	profiles repository.ProfileRepository
}

func NewUserService(db Database, log *slog.Logger, users repository.UserRepository, profiles repository.ProfileRepository) *UserService {
	return &UserService{
		BaseService: NewBaseService(db, log),
		ext:         db,
		users:       users,
		profiles:    profiles,
	}
}

// Register creates an active user. The email must not belong to another
// active user; a duplicate surfaces as apperrors.ErrAlreadyExists before the
// insert is attempted.
func (s *UserService) Register(ctx context.Context, id, name, email, passwordHash string) (*domain.User, error) {
	const op = "internal.service.user.Register"

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", op, &apperrors.AlreadyExistsError{Entity: "user", ID: email})
	}

	user := domain.NewUser(id, name, email, passwordHash)
	if err := s.users.Save(ctx, s.ext, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_id", user.ID))

	return user, nil
}

// Authenticate returns the active user matching the credentials, or
// apperrors.ErrNotFound.
func (s *UserService) Authenticate(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	const op = "internal.service.user.Authenticate"

	user, err := s.users.Authenticate(ctx, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ChangePassword verifies the current password before storing the new hash,
// both inside one transaction.
func (s *UserService) ChangePassword(ctx context.Context, id, currentHash, newHash string) error {
	const op = "internal.service.user.ChangePassword"

	return s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if user.PasswordHash != currentHash {
			return fmt.Errorf("%s: %w: current password does not match", op, apperrors.ErrValidation)
		}

		if err := s.users.UpdatePassword(ctx, tx, id, newHash); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
}

// ResetPassword replaces the password of the active user holding the email.
// It reports whether any user matched, so callers can distinguish a no-op
// reset without treating it as an error.
func (s *UserService) ResetPassword(ctx context.Context, email, newHash string) (bool, error) {
	const op = "internal.service.user.ResetPassword"

	matched, err := s.users.ResetPasswordByEmail(ctx, s.ext, email, newHash)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if matched {
		s.log.Info("password reset", slog.String("email", email))
	}

	return matched, nil
}

func (s *UserService) Update(ctx context.Context, user *domain.User) error {
	const op = "internal.service.user.Update"

	if err := s.users.Update(ctx, s.ext, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SaveProfile creates or replaces the user's profile. The user must exist
// and be active.
func (s *UserService) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	const op = "internal.service.user.SaveProfile"

	if _, err := s.users.FindByID(ctx, profile.UserID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.profiles.Upsert(ctx, s.ext, profile); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *UserService) ProfileOf(ctx context.Context, userID string) (*domain.Profile, error) {
	const op = "internal.service.user.ProfileOf"

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return profile, nil
}

// FindBySkill returns active users whose profile lists the skill.
func (s *UserService) FindBySkill(ctx context.Context, skill string) ([]domain.User, error) {
	const op = "internal.service.user.FindBySkill"

	users, err := s.users.FindBySkill(ctx, skill)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// Compatibility returns the skill overlap between two users' profiles as a
// percentage.
func (s *UserService) Compatibility(ctx context.Context, userID, otherID string) (int, error) {
	const op = "internal.service.user.Compatibility"

	mine, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	theirs, err := s.profiles.FindByUserID(ctx, otherID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return mine.CompatibilityPercent(theirs), nil
}
