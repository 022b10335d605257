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

// ProfileRepository persists user profiles. The skill set travels as a
// comma-separated column; domain.Profile owns the normalization.
type ProfileRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewProfileRepository(db *sqlx.DB, log *slog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type profileRow struct {
	ID       string `db:"id"`
	Bio      string `db:"bio"`
	PhotoURI string `db:"photo_uri"`
	Skills   string `db:"skills"`
	UserID   string `db:"user_id"`
}

func (row *profileRow) toDomain() *domain.Profile {
	profile := domain.NewProfile(row.ID, row.UserID, row.Bio, row.PhotoURI)
	profile.SetSkillsCSV(row.Skills)

	return profile
}

func (r *ProfileRepository) Save(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error {
	const op = "internal.repository.postgres.profile.Save"

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Insert("profiles").
		Columns("id", "bio", "photo_uri", "skills", "user_id").
		Values(profile.ID, profile.Bio, profile.PhotoURI, profile.SkillsCSV(), profile.UserID).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return classifyWriteErr(op, "profile", profile.ID, err)
	}

	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	const op = "internal.repository.postgres.profile.FindByID"

	return r.findOne(ctx, op, sq.Eq{"id": id}, id)
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	const op = "internal.repository.postgres.profile.FindByUserID"

	return r.findOne(ctx, op, sq.Eq{"user_id": userID}, userID)
}

func (r *ProfileRepository) findOne(ctx context.Context, op string, where sq.Eq, id string) (*domain.Profile, error) {
	query, args, err := r.sq.Select("id", "bio", "photo_uri", "skills", "user_id").
		From("profiles").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: profile for '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to get profile: %w", op, err)
	}

	return row.toDomain(), nil
}

func (r *ProfileRepository) ListAll(ctx context.Context) ([]domain.Profile, error) {
	const op = "internal.repository.postgres.profile.ListAll"

	query, args, err := r.sq.Select("id", "bio", "photo_uri", "skills", "user_id").
		From("profiles").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select profiles: %w", op, err)
	}

	profiles := make([]domain.Profile, len(rows))
	for i := range rows {
		profiles[i] = *rows[i].toDomain()
	}

	return profiles, nil
}

func (r *ProfileRepository) Update(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error {
	const op = "internal.repository.postgres.profile.Update"

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Update("profiles").
		Set("bio", profile.Bio).
		Set("photo_uri", profile.PhotoURI).
		Set("skills", profile.SkillsCSV()).
		Where(sq.Eq{"id": profile.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteErr(op, "profile", profile.ID, err)
	}

	return requireRows(op, "profile", profile.ID, res)
}

func (r *ProfileRepository) DeleteRow(ctx context.Context, ext sqlx.ExtContext, id string) error {
	const op = "internal.repository.postgres.profile.DeleteRow"

	query, args, err := r.sq.Delete("profiles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: "profile", Cause: err}
	}

	return requireRows(op, "profile", id, res)
}

// Upsert inserts the profile, or replaces bio/photo/skills when the user
// already has one. Keyed on the unique user_id constraint.
func (r *ProfileRepository) Upsert(ctx context.Context, ext sqlx.ExtContext, profile *domain.Profile) error {
	const op = "internal.repository.postgres.profile.Upsert"

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Insert("profiles").
		Columns("id", "bio", "photo_uri", "skills", "user_id").
		Values(profile.ID, profile.Bio, profile.PhotoURI, profile.SkillsCSV(), profile.UserID).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
            bio = EXCLUDED.bio,
            photo_uri = EXCLUDED.photo_uri,
            skills = EXCLUDED.skills`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return classifyWriteErr(op, "profile", profile.ID, err)
	}

	return nil
}
