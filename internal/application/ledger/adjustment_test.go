package ledger_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/entregas-api/internal/application/ledger"
	"github.com/jhoicas/entregas-api/internal/domain"
)

func TestApplyDeltas_DevuelveNivelesEnOrdenDeEntrada(t *testing.T) {
	store := seededStore()
	repos := store.readRepos()

	levels, err := ledger.AdjustmentService{}.ApplyDeltas(context.Background(), repos.Products, []ledger.StockDelta{
		{ProductID: "p2", Delta: -5},
		{ProductID: "p1", Delta: 3},
	})
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "p2", levels[0].ProductID)
	assert.Equal(t, int64(15), levels[0].Stock)
	assert.Equal(t, int64(13), levels[1].Stock)
	assert.Equal(t, int64(2), store.state.products["p1"].Version)
}

func TestApplyDeltas_RechazaStockNegativo(t *testing.T) {
	store := seededStore()
	_, err := ledger.AdjustmentService{}.ApplyDeltas(context.Background(), store.readRepos().Products, []ledger.StockDelta{
		{ProductID: "p1", Delta: -11},
	})
	var insuf *domain.InsufficientStockError
	require.True(t, errors.As(err, &insuf))
	assert.Equal(t, int64(11), insuf.Requested)
	assert.Equal(t, int64(10), insuf.Available)
}

func TestApplyDeltas_ConflictoNoSeEnvuelve(t *testing.T) {
	store := seededStore()
	store.conflictsLeft = 1
	_, err := ledger.AdjustmentService{}.ApplyDeltas(context.Background(), store.readRepos().Products, []ledger.StockDelta{
		{ProductID: "p1", Delta: 1},
	})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.False(t, errors.Is(err, domain.ErrAdjustment))
}

func TestApplyDeltas_ProductoInexistente(t *testing.T) {
	store := seededStore()
	_, err := ledger.AdjustmentService{}.ApplyDeltas(context.Background(), store.readRepos().Products, []ledger.StockDelta{
		{ProductID: "zz", Delta: 1},
	})
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestApplyDeltas_DesbordeEsCantidadInvalida(t *testing.T) {
	store := seededStore()
	_, err := ledger.AdjustmentService{}.ApplyDeltas(context.Background(), store.readRepos().Products, []ledger.StockDelta{
		{ProductID: "p2", Delta: math.MaxInt64},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.False(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, int64(20), store.stock("p2"))
}
