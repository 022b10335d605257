package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/jmoiron/sqlx"
)

// UserRepository persists users. Deletes are logical: every read filters on
// active = true, so a deactivated user is indistinguishable from a missing
// one while the rows referencing it survive.
type UserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewUserRepository(db *sqlx.DB, log *slog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var userColumns = []string{"id", "name", "email", "password_hash", "active", "registered_at"}

func (r *UserRepository) Save(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error {
	const op = "internal.repository.postgres.user.Save"

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Insert("users").
		Columns("id", "name", "email", "password_hash", "active").
		Values(user.ID, user.Name, user.Email, user.PasswordHash, user.Active).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return classifyWriteErr(op, "user", user.ID, err)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const op = "internal.repository.postgres.user.FindByID"

	query, args, err := r.sq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: user with id '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	return &user, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	const op = "internal.repository.postgres.user.ListAll"

	query, args, err := r.sq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select users: %w", op, err)
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error {
	const op = "internal.repository.postgres.user.Update"

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Where(sq.Eq{"id": user.ID, "active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteErr(op, "user", user.ID, err)
	}

	return requireRows(op, "user", user.ID, res)
}

// Deactivate is the user's delete: the active flag is cleared and the row
// stays. It never cascades.
func (r *UserRepository) Deactivate(ctx context.Context, ext sqlx.ExtContext, id string) error {
	const op = "internal.repository.postgres.user.Deactivate"

	r.log.Info("deactivating user", slog.String("op", op), slog.String("user_id", id))

	query, args, err := r.sq.Update("users").
		Set("active", false).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "user", Cause: err}
	}

	return requireRows(op, "user", id, res)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "internal.repository.postgres.user.FindByEmail"

	query, args, err := r.sq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: user with email '%s'", op, apperrors.ErrNotFound, email)
		}

		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "internal.repository.postgres.user.EmailExists"

	query, args, err := r.sq.Select("COUNT(*)").
		From("users").
		Where(sq.Eq{"email": email, "active": true}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("%s: failed to count users: %w", op, err)
	}

	return count > 0, nil
}

func (r *UserRepository) Authenticate(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	const op = "internal.repository.postgres.user.Authenticate"

	query, args, err := r.sq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email, "password_hash": passwordHash, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: no active user matches credentials", op, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: failed to authenticate: %w", op, err)
	}

	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, ext sqlx.ExtContext, id, newHash string) error {
	const op = "internal.repository.postgres.user.UpdatePassword"

	query, args, err := r.sq.Update("users").
		Set("password_hash", newHash).
		Where(sq.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "user", Cause: err}
	}

	return requireRows(op, "user", id, res)
}

func (r *UserRepository) ResetPasswordByEmail(ctx context.Context, ext sqlx.ExtContext, email, newHash string) (bool, error) {
	const op = "internal.repository.postgres.user.ResetPasswordByEmail"

	query, args, err := r.sq.Update("users").
		Set("password_hash", newHash).
		Where(sq.Eq{"email": email, "active": true}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &apperrors.PersistenceError{Op: op, Entity: "user", Cause: err}
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	return rowsAffected > 0, nil
}

func (r *UserRepository) FindBySkill(ctx context.Context, skill string) ([]domain.User, error) {
	const op = "internal.repository.postgres.user.FindBySkill"

	query, args, err := r.sq.Select(
		"u.id", "u.name", "u.email", "u.password_hash", "u.active", "u.registered_at",
	).
		From("users u").
		Join("profiles p ON u.id = p.user_id").
		Where(sq.Eq{"u.active": true}).
		Where(sq.Like{"p.skills": "%" + skill + "%"}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select users: %w", op, err)
	}

	return users, nil
}

func (r *UserRepository) ListWithTasksInProgress(ctx context.Context) ([]domain.User, error) {
	const op = "internal.repository.postgres.user.ListWithTasksInProgress"

	query, args, err := r.sq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"active": true}).
		Where(sq.Expr(
			"EXISTS (SELECT 1 FROM tasks WHERE tasks.assignee_id = users.id AND tasks.status = ?)",
			domain.TaskInProgress,
		)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select users: %w", op, err)
	}

	return users, nil
}

func (r *UserRepository) Stats(ctx context.Context, userID string) (*domain.UserStats, error) {
	const op = "internal.repository.postgres.user.Stats"

	// One round trip; COALESCE keeps the average at 0.0 for users whose
	// solutions have no ratings yet.
	query := `
        SELECT
            $1::varchar as user_id,
            (SELECT COUNT(*) FROM projects WHERE user_id = $1) as total_projects,
            (SELECT COUNT(*) FROM tasks WHERE assignee_id = $1) as total_tasks,
            (SELECT COUNT(*) FROM solutions WHERE author_id = $1) as total_solutions,
            (SELECT COUNT(*) FROM ratings WHERE rater_id = $1) as total_ratings,
            (SELECT COALESCE(AVG(r.score), 0)
             FROM ratings r
             JOIN solutions s ON r.solution_id = s.id
             WHERE s.author_id = $1) as average_received`

	var stats domain.UserStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("%s: failed to get user stats: %w", op, err)
	}

	return &stats, nil
}
