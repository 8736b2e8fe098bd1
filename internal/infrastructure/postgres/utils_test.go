package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/entregas-api/internal/domain"
)

func TestWrap_ClasificaConflictos(t *testing.T) {
	for _, code := range []string{"40001", "40P01"} {
		err := wrap("commit transaction", &pgconn.PgError{Code: code})
		assert.True(t, errors.Is(err, domain.ErrConflict), code)
	}

	err := wrap("insert transaction", &pgconn.PgError{Code: "23502"})
	assert.False(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "insert transaction")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.True(t, isCheckViolation(&pgconn.PgError{Code: "23514"}))
}

func TestSchema_IncluyeRestriccionDeStock(t *testing.T) {
	assert.Contains(t, schemaSQL, "CHECK (stock >= 0)")
	assert.Contains(t, schemaSQL, "stock_transactions")
}
