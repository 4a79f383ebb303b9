package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alintm4/django-crud/internal/config"
)

var (
	ErrNotFound      = errors.New("not found in database")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)

const uniqueViolation = "23505"

func NewConnection(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	dbPath := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	deadline := time.After(cfg.Timeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn, err := pgxpool.New(ctx, dbPath)
			if err != nil {
				continue
			}
			if err = conn.Ping(ctx); err != nil {
				continue
			}
			return conn, nil

		case <-deadline:
			return nil, fmt.Errorf("unable to connect to database")
		}
	}
}

// mapUniqueViolation translates a unique-constraint violation into the
// sentinel for the conflicting column, so callers can surface it as a form
// field error instead of a server failure.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_username_key":
		return ErrUsernameTaken
	case "users_email_lower_idx":
		return ErrEmailTaken
	}
	return err
}
