// Package postgres implements the repository contracts over PostgreSQL
// using sqlx with squirrel-built parameterized statements.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/colabhub/colabhub/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Postgres struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  squirrel.StatementBuilderType
}

func NewDB(cfg config.Postgres, log *slog.Logger) (*Postgres, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &Postgres{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func (p *Postgres) DB() *sqlx.DB {
	return p.db
}

// Postgres error classes this layer distinguishes. Everything else is a
// generic persistence failure.
const (
	pqUniqueViolation = "23505"
	pqFKViolation     = "23503"
	pqCheckViolation  = "23514"
)

// classifyWriteErr maps a driver error from an insert/update onto the
// apperrors taxonomy: unique violations become AlreadyExists, foreign-key
// violations become a wrapped ErrNotFound for the missing parent, check
// violations become ErrValidation, and anything else is wrapped as a
// PersistenceError carrying the operation and entity kind.
func classifyWriteErr(op, entity, id string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &apperrors.AlreadyExistsError{Entity: entity, ID: id}
		case pqFKViolation:
			return fmt.Errorf("%s: %w: referenced row for %s '%s'", op, apperrors.ErrNotFound, entity, id)
		case pqCheckViolation:
			return &apperrors.ValidationError{
				Entity:   entity,
				Messages: []string{fmt.Sprintf("constraint %s violated", pqErr.Constraint)},
			}
		}
	}

	return &apperrors.PersistenceError{Op: op, Entity: entity, Cause: err}
}

// requireRows converts a zero-rows-affected result into ErrNotFound.
func requireRows(op, entity, id string, res sql.Result) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return &apperrors.PersistenceError{Op: op, Entity: entity, Cause: err}
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w: %s with id '%s'", op, apperrors.ErrNotFound, entity, id)
	}

	return nil
}
