package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const (
	pgUniqueViolation = "23505"
	accessDenied      = "Access denied"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// inTx runs fn in one transaction; any error rolls everything back.
func inTx(ctx context.Context, db txBeginner, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// translate turns a persistence error into an application error. Errors
// that are already application errors pass through untouched.
func translate(ctx context.Context, err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(notFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.New(apperr.ErrUnavailable, "Request cancelled")
	}
	logger.From(ctx).Error("persistence failure", logger.Err(err))
	return apperr.Internal("Internal server error")
}

func requireOwner(actor *models.User, ownerID int64) error {
	if actor == nil {
		return apperr.Unauthenticated("Could not validate credentials")
	}
	if actor.ID != ownerID {
		return apperr.Forbidden(accessDenied)
	}
	return nil
}

// snapshot flattens a value to the JSON object stored in audit logs.
func snapshot(value any) map[string]any {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
