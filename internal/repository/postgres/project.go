package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/jmoiron/sqlx"
)

type ProjectRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewProjectRepository(db *sqlx.DB, log *slog.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var projectColumns = []string{"id", "title", "description", "status", "user_id", "created_at", "completed_at"}

func (r *ProjectRepository) Save(ctx context.Context, ext sqlx.ExtContext, project *domain.Project) error {
	const op = "internal.repository.postgres.project.Save"

	if err := project.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Insert("projects").
		Columns("id", "title", "description", "status", "user_id").
		Values(project.ID, project.Title, project.Description, project.Status, project.UserID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return classifyWriteErr(op, "project", project.ID, err)
	}

	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	const op = "internal.repository.postgres.project.FindByID"

	query, args, err := r.sq.Select(projectColumns...).
		From("projects").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var project domain.Project
	if err := r.db.GetContext(ctx, &project, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: project with id '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to get project: %w", op, err)
	}

	return &project, nil
}

func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	const op = "internal.repository.postgres.project.ListAll"

	return r.list(ctx, op, nil)
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Project, error) {
	const op = "internal.repository.postgres.project.ListByOwner"

	return r.list(ctx, op, sq.Eq{"user_id": userID})
}

func (r *ProjectRepository) ListActive(ctx context.Context) ([]domain.Project, error) {
	const op = "internal.repository.postgres.project.ListActive"

	return r.list(ctx, op, sq.Eq{"status": domain.ProjectInProgress})
}

func (r *ProjectRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Project, error) {
	const op = "internal.repository.postgres.project.ListCreatedBetween"

	return r.list(ctx, op, sq.Expr("created_at BETWEEN ? AND ?", from, to))
}

func (r *ProjectRepository) list(ctx context.Context, op string, where interface{}) ([]domain.Project, error) {
	builder := r.sq.Select(projectColumns...).From("projects")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var projects []domain.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select projects: %w", op, err)
	}

	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, ext sqlx.ExtContext, project *domain.Project) error {
	const op = "internal.repository.postgres.project.Update"

	if err := project.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Update("projects").
		Set("title", project.Title).
		Set("description", project.Description).
		Set("status", project.Status).
		Where(sq.Eq{"id": project.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteErr(op, "project", project.ID, err)
	}

	return requireRows(op, "project", project.ID, res)
}

func (r *ProjectRepository) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	const op = "internal.repository.postgres.project.DeleteRow"

	query, args, err := r.sq.Delete("projects").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "project", Cause: err}
	}

	return requireRows(op, "project", id, res)
}

func (r *ProjectRepository) Complete(ctx context.Context, ext sqlx.ExtContext, id string, at time.Time) error {
	const op = "internal.repository.postgres.project.Complete"

	query, args, err := r.sq.Update("projects").
		Set("status", domain.ProjectConcluded).
		Set("completed_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "project", Cause: err}
	}

	return requireRows(op, "project", id, res)
}

// Progress pushes the fold into the store: percentage of the project's
// tasks in status CONCLUIDA, 0.0 when the project has no tasks.
func (r *ProjectRepository) Progress(ctx context.Context, id string) (float64, error) {
	const op = "internal.repository.postgres.project.Progress"

	query := `
        SELECT
            COUNT(*) as total,
            COUNT(*) FILTER (WHERE status = $2) as concluded
        FROM tasks
        WHERE project_id = $1`

	var counts struct {
		Total     int64 `db:"total"`
		Concluded int64 `db:"concluded"`
	}
	if err := r.db.GetContext(ctx, &counts, query, id, domain.TaskConcluded); err != nil {
		return 0, fmt.Errorf("%s: failed to count tasks: %w", op, err)
	}

	if counts.Total == 0 {
		return 0.0, nil
	}

	return float64(counts.Concluded) / float64(counts.Total) * 100, nil
}

func (r *ProjectRepository) StatusCounts(ctx context.Context) (map[domain.ProjectStatus]int64, error) {
	const op = "internal.repository.postgres.project.StatusCounts"

	query, args, err := r.sq.Select("status", "COUNT(*) as total").
		From("projects").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []struct {
		Status domain.ProjectStatus `db:"status"`
		Total  int64                `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select counts: %w", op, err)
	}

	counts := make(map[domain.ProjectStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

// TeamMembers returns the distinct users responsible for the project's
// tasks, active ones only.
func (r *ProjectRepository) TeamMembers(ctx context.Context, id string) ([]domain.User, error) {
	const op = "internal.repository.postgres.project.TeamMembers"

	query, args, err := r.sq.Select(
		"DISTINCT u.id", "u.name", "u.email", "u.password_hash", "u.active", "u.registered_at",
	).
		From("users u").
		Join("tasks t ON u.id = t.assignee_id").
		Where(sq.Eq{"t.project_id": id, "u.active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var members []domain.User
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select team members: %w", op, err)
	}

	return members, nil
}
