package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/lotes-api/internal/domain"
)

// Códigos SQLSTATE que el motor traduce a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03" // lock_timeout
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeQueryCanceled        = "57014" // statement_timeout
)

// mapError traduce errores de PostgreSQL: violación única -> ErrDuplicate; espera de bloqueo,
// serialización o deadlock -> ErrConcurrencyConflict (reintentable). El resto se envuelve con op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return domain.ErrDuplicate
		case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected, codeQueryCanceled:
			return domain.ErrConcurrencyConflict
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
