package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/repository"
)

// StudentRepository implements port.StudentRepository over the allievi table.
type StudentRepository struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

// NewStudentRepository wires a PostgreSQL-backed student repository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var studentColumns = []string{
	"id",
	"email",
	"password_hash",
	"nome",
	"attivo",
	"data_teoria_passata",
	"last_login",
	"last_visit",
	"avatar_url",
}

// GetByEmail retrieves a student by case-normalized email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	stmt, args, err := r.builder.
		Select(studentColumns...).
		From("allievi").
		Where(squirrel.Expr("lower(email) = ?", normalized)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select student sql: %w", err)
	}

	row := r.pool.QueryRow(ctx, stmt, args...)

	var s domain.Student
	if err := row.Scan(
		&s.ID,
		&s.Email,
		&s.PasswordHash,
		&s.Nome,
		&s.Attivo,
		&s.TheoryExamPassed,
		&s.LastLogin,
		&s.LastVisit,
		&s.AvatarURL,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select student by email: %w", err)
	}

	return &s, nil
}

// UpdateLastLogin stamps the successful-login time.
func (r *StudentRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateTimestamp(ctx, id, "last_login", at)
}

// UpdateLastVisit stamps the notification-freshness marker.
func (r *StudentRepository) UpdateLastVisit(ctx context.Context, id string, at time.Time) error {
	return r.updateTimestamp(ctx, id, "last_visit", at)
}

func (r *StudentRepository) updateTimestamp(ctx context.Context, id, column string, at time.Time) error {
	stmt, args, err := r.builder.
		Update("allievi").
		Set(column, at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s sql: %w", column, err)
	}

	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateAvatarURL persists the new avatar location; nil clears it.
func (r *StudentRepository) UpdateAvatarURL(ctx context.Context, id string, url *string) error {
	var value any
	if url != nil && *url != "" {
		value = *url
	}

	stmt, args, err := r.builder.
		Update("allievi").
		Set("avatar_url", value).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update avatar_url sql: %w", err)
	}

	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update avatar_url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.StudentRepository = (*StudentRepository)(nil)
