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

type RatingRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewRatingRepository(db *sqlx.DB, log *slog.Logger) *RatingRepository {
	return &RatingRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var ratingColumns = []string{"id", "score", "comment", "solution_id", "rater_id", "rated_at"}

func (r *RatingRepository) Save(ctx context.Context, ext sqlx.ExtContext, rating *domain.Rating) error {
	const op = "internal.repository.postgres.rating.Save"

	if err := rating.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Insert("ratings").
		Columns("id", "score", "comment", "solution_id", "rater_id").
		Values(rating.ID, rating.Score, rating.Comment, rating.SolutionID, rating.RaterID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return classifyWriteErr(op, "rating", rating.ID, err)
	}

	return nil
}

func (r *RatingRepository) FindByID(ctx context.Context, id string) (*domain.Rating, error) {
	const op = "internal.repository.postgres.rating.FindByID"

	query, args, err := r.sq.Select(ratingColumns...).
		From("ratings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rating domain.Rating
	if err := r.db.GetContext(ctx, &rating, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: rating with id '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to get rating: %w", op, err)
	}

	return &rating, nil
}

func (r *RatingRepository) ListAll(ctx context.Context) ([]domain.Rating, error) {
	const op = "internal.repository.postgres.rating.ListAll"

	return r.list(ctx, op, nil)
}

func (r *RatingRepository) ListBySolution(ctx context.Context, solutionID string) ([]domain.Rating, error) {
	const op = "internal.repository.postgres.rating.ListBySolution"

	return r.list(ctx, op, sq.Eq{"solution_id": solutionID})
}

func (r *RatingRepository) ListByRater(ctx context.Context, userID string) ([]domain.Rating, error) {
	const op = "internal.repository.postgres.rating.ListByRater"

	return r.list(ctx, op, sq.Eq{"rater_id": userID})
}

func (r *RatingRepository) list(ctx context.Context, op string, where interface{}) ([]domain.Rating, error) {
	builder := r.sq.Select(ratingColumns...).From("ratings")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var ratings []domain.Rating
	if err := r.db.SelectContext(ctx, &ratings, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select ratings: %w", op, err)
	}

	return ratings, nil
}

func (r *RatingRepository) Update(ctx context.Context, ext sqlx.ExtContext, rating *domain.Rating) error {
	const op = "internal.repository.postgres.rating.Update"

	if err := rating.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Update("ratings").
		Set("score", rating.Score).
		Set("comment", rating.Comment).
		Where(sq.Eq{"id": rating.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteErr(op, "rating", rating.ID, err)
	}

	return requireRows(op, "rating", rating.ID, res)
}

func (r *RatingRepository) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	const op = "internal.repository.postgres.rating.DeleteRow"

	query, args, err := r.sq.Delete("ratings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "rating", Cause: err}
	}

	return requireRows(op, "rating", id, res)
}

// DeleteBySolution removes every rating of the solution inside the caller's
// unit of work. A solution without ratings deletes zero rows, which is fine.
func (r *RatingRepository) DeleteBySolution(ctx context.Context, ext sqlx.ExtContext, solutionID string) (int64, error) {
	const op = "internal.repository.postgres.rating.DeleteBySolution"

	query, args, err := r.sq.Delete("ratings").
		Where(sq.Eq{"solution_id": solutionID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &apperrors.PersistenceError{Op: op, Entity: "rating", Cause: err}
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	return rowsAffected, nil
}

func (r *RatingRepository) AverageForSolution(ctx context.Context, solutionID string) (float64, error) {
	const op = "internal.repository.postgres.rating.AverageForSolution"

	return r.average(ctx, op, sq.Eq{"solution_id": solutionID})
}

func (r *RatingRepository) AverageForSolutionBetween(ctx context.Context, solutionID string, from, to time.Time) (float64, error) {
	const op = "internal.repository.postgres.rating.AverageForSolutionBetween"

	return r.average(ctx, op, sq.And{
		sq.Eq{"solution_id": solutionID},
		sq.Expr("rated_at BETWEEN ? AND ?", from, to),
	})
}

// average keeps the empty-set policy in one place: COALESCE pins the mean
// to 0.0 when no rows match.
func (r *RatingRepository) average(ctx context.Context, op string, where interface{}) (float64, error) {
	query, args, err := r.sq.Select("COALESCE(AVG(score), 0) as average").
		From("ratings").
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var average float64
	if err := r.db.GetContext(ctx, &average, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to get average: %w", op, err)
	}

	return average, nil
}

func (r *RatingRepository) OverallStats(ctx context.Context) (*domain.RatingStats, error) {
	const op = "internal.repository.postgres.rating.OverallStats"

	query := `
        SELECT
            COALESCE(AVG(score), 0) as average,
            COALESCE(MIN(score), 0) as min_score,
            COALESCE(MAX(score), 0) as max_score,
            COUNT(*) as total
        FROM ratings`

	var stats domain.RatingStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("%s: failed to get rating stats: %w", op, err)
	}

	return &stats, nil
}

// Ranking returns the best-rated solutions having at least minRatings
// ratings, ordered by descending average. Ties are broken by ascending
// solution id so equal averages rank deterministically. A non-positive limit
// returns every qualifying solution.
func (r *RatingRepository) Ranking(ctx context.Context, limit int, minRatings int64) ([]domain.RankingEntry, error) {
	const op = "internal.repository.postgres.rating.Ranking"

	query := `
        SELECT
            s.id as solution_id,
            s.title as title,
            u.name as author_name,
            COUNT(r.id) as rating_count,
            AVG(r.score) as average
        FROM solutions s
        JOIN ratings r ON r.solution_id = s.id
        JOIN users u ON u.id = s.author_id
        GROUP BY s.id, s.title, u.name
        HAVING COUNT(r.id) >= $1
        ORDER BY average DESC, s.id ASC`

	args := []interface{}{minRatings}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var entries []domain.RankingEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select ranking: %w", op, err)
	}

	return entries, nil
}

// ScoreDistribution counts ratings per score value. Scores nobody gave are
// present with a zero count so the result always spans [MinScore, MaxScore].
func (r *RatingRepository) ScoreDistribution(ctx context.Context) (map[int]int64, error) {
	const op = "internal.repository.postgres.rating.ScoreDistribution"

	query, args, err := r.sq.Select("score", "COUNT(*) as total").
		From("ratings").
		GroupBy("score").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []struct {
		Score int   `db:"score"`
		Total int64 `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select distribution: %w", op, err)
	}

	distribution := make(map[int]int64, domain.MaxScore-domain.MinScore+1)
	for score := domain.MinScore; score <= domain.MaxScore; score++ {
		distribution[score] = 0
	}
	for _, row := range rows {
		distribution[row.Score] = row.Total
	}

	return distribution, nil
}
