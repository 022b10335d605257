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

type SolutionRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewSolutionRepository(db *sqlx.DB, log *slog.Logger) *SolutionRepository {
	return &SolutionRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var solutionColumns = []string{"id", "title", "description", "status", "task_id", "author_id", "submitted_at"}

func (r *SolutionRepository) Save(ctx context.Context, ext sqlx.ExtContext, solution *domain.Solution) error {
	const op = "internal.repository.postgres.solution.Save"

	if err := solution.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Insert("solutions").
		Columns("id", "title", "description", "status", "task_id", "author_id").
		Values(solution.ID, solution.Title, solution.Description, solution.Status,
			solution.TaskID, solution.AuthorID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return classifyWriteErr(op, "solution", solution.ID, err)
	}

	return nil
}

func (r *SolutionRepository) FindByID(ctx context.Context, id string) (*domain.Solution, error) {
	const op = "internal.repository.postgres.solution.FindByID"

	query, args, err := r.sq.Select(solutionColumns...).
		From("solutions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var solution domain.Solution
	if err := r.db.GetContext(ctx, &solution, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: solution with id '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to get solution: %w", op, err)
	}

	return &solution, nil
}

func (r *SolutionRepository) ListAll(ctx context.Context) ([]domain.Solution, error) {
	const op = "internal.repository.postgres.solution.ListAll"

	return r.list(ctx, op, func(b sq.SelectBuilder) sq.SelectBuilder { return b })
}

func (r *SolutionRepository) ListByAuthor(ctx context.Context, userID string) ([]domain.Solution, error) {
	const op = "internal.repository.postgres.solution.ListByAuthor"

	return r.list(ctx, op, func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"author_id": userID})
	})
}

func (r *SolutionRepository) ListByStatus(ctx context.Context, status domain.SolutionStatus) ([]domain.Solution, error) {
	const op = "internal.repository.postgres.solution.ListByStatus"

	return r.list(ctx, op, func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"status": status})
	})
}

// ListRecent returns the most recently submitted solutions first. A
// non-positive limit returns everything.
func (r *SolutionRepository) ListRecent(ctx context.Context, limit int) ([]domain.Solution, error) {
	const op = "internal.repository.postgres.solution.ListRecent"

	return r.list(ctx, op, func(b sq.SelectBuilder) sq.SelectBuilder {
		b = b.OrderBy("submitted_at DESC", "id ASC")
		if limit > 0 {
			b = b.Limit(uint64(limit))
		}

		return b
	})
}

func (r *SolutionRepository) list(ctx context.Context, op string, shape func(sq.SelectBuilder) sq.SelectBuilder) ([]domain.Solution, error) {
	query, args, err := shape(r.sq.Select(solutionColumns...).From("solutions")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var solutions []domain.Solution
	if err := r.db.SelectContext(ctx, &solutions, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select solutions: %w", op, err)
	}

	return solutions, nil
}

// ListByTask runs on ext so the cascade coordinator reads its own
// transactional snapshot.
func (r *SolutionRepository) ListByTask(ctx context.Context, ext sqlx.ExtContext, taskID string) ([]domain.Solution, error) {
	const op = "internal.repository.postgres.solution.ListByTask"

	query, args, err := r.sq.Select(solutionColumns...).
		From("solutions").
		Where(sq.Eq{"task_id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var solutions []domain.Solution
	if err := sqlx.SelectContext(ctx, ext, &solutions, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select solutions: %w", op, err)
	}

	return solutions, nil
}

// ListPopular orders by the descending average of each solution's ratings.
// Unrated solutions average 0.0 via COALESCE and sort last, ties broken by
// ascending id. A non-positive limit returns everything.
func (r *SolutionRepository) ListPopular(ctx context.Context, limit int) ([]domain.Solution, error) {
	const op = "internal.repository.postgres.solution.ListPopular"

	query := `
        SELECT s.id, s.title, s.description, s.status, s.task_id, s.author_id, s.submitted_at
        FROM solutions s
        LEFT JOIN ratings r ON r.solution_id = s.id
        GROUP BY s.id
        ORDER BY COALESCE(AVG(r.score), 0) DESC, s.id ASC`

	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var solutions []domain.Solution
	if err := r.db.SelectContext(ctx, &solutions, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select solutions: %w", op, err)
	}

	return solutions, nil
}

func (r *SolutionRepository) Update(ctx context.Context, ext sqlx.ExtContext, solution *domain.Solution) error {
	const op = "internal.repository.postgres.solution.Update"

	if err := solution.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Update("solutions").
		Set("title", solution.Title).
		Set("description", solution.Description).
		Set("status", solution.Status).
		Where(sq.Eq{"id": solution.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteErr(op, "solution", solution.ID, err)
	}

	return requireRows(op, "solution", solution.ID, res)
}

func (r *SolutionRepository) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	const op = "internal.repository.postgres.solution.DeleteRow"

	query, args, err := r.sq.Delete("solutions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "solution", Cause: err}
	}

	return requireRows(op, "solution", id, res)
}

func (r *SolutionRepository) SetStatus(ctx context.Context, ext sqlx.ExtContext, id string, status domain.SolutionStatus) error {
	const op = "internal.repository.postgres.solution.SetStatus"

	query, args, err := r.sq.Update("solutions").
		Set("status", status).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteErr(op, "solution", id, err)
	}

	return requireRows(op, "solution", id, res)
}

func (r *SolutionRepository) CountByAuthor(ctx context.Context, userID string) (int64, error) {
	const op = "internal.repository.postgres.solution.CountByAuthor"

	query, args, err := r.sq.Select("COUNT(*)").
		From("solutions").
		Where(sq.Eq{"author_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to count solutions: %w", op, err)
	}

	return count, nil
}
