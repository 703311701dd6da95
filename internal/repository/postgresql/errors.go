package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/invite"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeTooManyConnections   = "53300"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// isTransient reports failures a caller may retry: lost or refused connections,
// timeouts, server shutdown, and serialization conflicts.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			strings.HasPrefix(pgErr.Code, "57P"), // operator intervention
			pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected,
			pgErr.Code == codeTooManyConnections:
			return true
		}
	}
	return false
}

func wrapError(op string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %w", op, invite.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
