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

type TaskRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewTaskRepository(db *sqlx.DB, log *slog.Logger) *TaskRepository {
	return &TaskRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var taskColumns = []string{
	"id", "title", "description", "status", "priority",
	"project_id", "assignee_id", "deadline", "created_at", "completed_at",
}

func (r *TaskRepository) Save(ctx context.Context, ext sqlx.ExtContext, task *domain.Task) error {
	const op = "internal.repository.postgres.task.Save"

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Insert("tasks").
		Columns("id", "title", "description", "status", "priority", "project_id", "assignee_id", "deadline").
		Values(task.ID, task.Title, task.Description, task.Status, task.Priority,
			task.ProjectID, task.AssigneeID, task.Deadline).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return classifyWriteErr(op, "task", task.ID, err)
	}

	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	const op = "internal.repository.postgres.task.FindByID"

	query, args, err := r.sq.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var task domain.Task
	if err := r.db.GetContext(ctx, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: task with id '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to get task: %w", op, err)
	}

	return &task, nil
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	const op = "internal.repository.postgres.task.ListAll"

	return r.list(ctx, op, nil)
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, userID string) ([]domain.Task, error) {
	const op = "internal.repository.postgres.task.ListByAssignee"

	return r.list(ctx, op, sq.Eq{"assignee_id": userID})
}

func (r *TaskRepository) ListPending(ctx context.Context) ([]domain.Task, error) {
	const op = "internal.repository.postgres.task.ListPending"

	return r.list(ctx, op, sq.Eq{"status": domain.TaskPending})
}

func (r *TaskRepository) ListByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error) {
	const op = "internal.repository.postgres.task.ListByPriority"

	return r.list(ctx, op, sq.Eq{"priority": priority})
}

func (r *TaskRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Task, error) {
	const op = "internal.repository.postgres.task.ListOverdue"

	return r.list(ctx, op, sq.And{
		sq.Expr("deadline IS NOT NULL"),
		sq.Lt{"deadline": now},
		sq.NotEq{"status": domain.TaskConcluded},
	})
}

func (r *TaskRepository) list(ctx context.Context, op string, where interface{}) ([]domain.Task, error) {
	builder := r.sq.Select(taskColumns...).From("tasks")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var tasks []domain.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select tasks: %w", op, err)
	}

	return tasks, nil
}

// ListByProject runs on ext, not the pool, so the cascade coordinator sees
// its own uncommitted state when collecting rows to delete.
func (r *TaskRepository) ListByProject(ctx context.Context, ext sqlx.ExtContext, projectID string) ([]domain.Task, error) {
	const op = "internal.repository.postgres.task.ListByProject"

	query, args, err := r.sq.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var tasks []domain.Task
	if err := sqlx.SelectContext(ctx, ext, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select tasks: %w", op, err)
	}

	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, ext sqlx.ExtContext, task *domain.Task) error {
	const op = "internal.repository.postgres.task.Update"

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("status", task.Status).
		Set("priority", task.Priority).
		Set("assignee_id", task.AssigneeID).
		Set("deadline", task.Deadline).
		Set("completed_at", task.CompletedAt).
		Where(sq.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteErr(op, "task", task.ID, err)
	}

	return requireRows(op, "task", task.ID, res)
}

func (r *TaskRepository) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	const op = "internal.repository.postgres.task.DeleteRow"

	query, args, err := r.sq.Delete("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "task", Cause: err}
	}

	return requireRows(op, "task", id, res)
}

func (r *TaskRepository) Complete(ctx context.Context, ext sqlx.ExtContext, id string, at time.Time) error {
	const op = "internal.repository.postgres.task.Complete"

	query, args, err := r.sq.Update("tasks").
		Set("status", domain.TaskConcluded).
		Set("completed_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "task", Cause: err}
	}

	return requireRows(op, "task", id, res)
}

func (r *TaskRepository) SetPriority(ctx context.Context, ext sqlx.ExtContext, id string, priority domain.TaskPriority) error {
	const op = "internal.repository.postgres.task.SetPriority"

	query, args, err := r.sq.Update("tasks").
		Set("priority", priority).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteErr(op, "task", id, err)
	}

	return requireRows(op, "task", id, res)
}

func (r *TaskRepository) CountsByStatus(ctx context.Context) (map[domain.TaskStatus]int64, error) {
	const op = "internal.repository.postgres.task.CountsByStatus"

	query, args, err := r.sq.Select("status", "COUNT(*) as total").
		From("tasks").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []struct {
		Status domain.TaskStatus `db:"status"`
		Total  int64             `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select counts: %w", op, err)
	}

	counts := make(map[domain.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

func (r *TaskRepository) CountsByPriority(ctx context.Context) (map[domain.TaskPriority]int64, error) {
	const op = "internal.repository.postgres.task.CountsByPriority"

	query, args, err := r.sq.Select("priority", "COUNT(*) as total").
		From("tasks").
		GroupBy("priority").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []struct {
		Priority domain.TaskPriority `db:"priority"`
		Total    int64               `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select counts: %w", op, err)
	}

	counts := make(map[domain.TaskPriority]int64, len(rows))
	for _, row := range rows {
		counts[row.Priority] = row.Total
	}

	return counts, nil
}

// AssigneePerformance summarizes task throughput per active assignee:
// totals, concluded counts and the average days from creation to conclusion.
func (r *TaskRepository) AssigneePerformance(ctx context.Context) ([]domain.AssigneePerformance, error) {
	const op = "internal.repository.postgres.task.AssigneePerformance"

	query := `
        SELECT
            u.id as user_id,
            u.name as name,
            COUNT(t.id) as total_tasks,
            COUNT(t.id) FILTER (WHERE t.status = $1) as concluded_tasks,
            COALESCE(AVG(
                EXTRACT(EPOCH FROM (t.completed_at - t.created_at)) / 86400
            ) FILTER (WHERE t.completed_at IS NOT NULL), 0) as avg_days_to_conclude
        FROM users u
        JOIN tasks t ON t.assignee_id = u.id
        WHERE u.active = true
        GROUP BY u.id, u.name
        ORDER BY concluded_tasks DESC, u.id ASC`

	var performance []domain.AssigneePerformance
	if err := r.db.SelectContext(ctx, &performance, query, domain.TaskConcluded); err != nil {
		return nil, fmt.Errorf("%s: failed to select assignee performance: %w", op, err)
	}

	return performance, nil
}
