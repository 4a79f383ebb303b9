package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alintm4/django-crud/internal/models"
)

type SessionRepository struct {
	db      *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	query, args, err := r.builder.
		Insert("sessions").
		Columns("id", "user_id", "csrf_token", "expires_at").
		Values(s.ID, s.UserID, s.CSRFToken, s.ExpiresAt).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&s.CreatedAt)
}

// Get returns the session only while it is still live; an expired row is
// indistinguishable from a missing one.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query, args, err := r.builder.
		Select("id", "user_id", "csrf_token", "created_at", "expires_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("expires_at > now()")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var s models.Session
	err = r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.UserID, &s.CSRFToken, &s.CreatedAt, &s.ExpiresAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.builder.
		Delete("sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// DeleteExpired reaps dead sessions. Called opportunistically at login so no
// background job is needed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query, args, err := r.builder.
		Delete("sessions").
		Where(squirrel.Expr("expires_at <= now()")).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
