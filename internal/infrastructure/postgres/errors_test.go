package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/lotes-api/internal/domain"
)

func TestMapError(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	assert.NoError(t, mapError("op", nil))
	assert.ErrorIs(t, mapError("op", wrap("23505")), domain.ErrDuplicate)
	for _, code := range []string{"55P03", "40001", "40P01", "57014"} {
		assert.ErrorIs(t, mapError("op", wrap(code)), domain.ErrConcurrencyConflict, code)
	}

	other := errors.New("conexión cerrada")
	err := mapError("get lot", other)
	assert.ErrorIs(t, err, other)
	assert.Contains(t, err.Error(), "get lot")
}
