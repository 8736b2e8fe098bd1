package ledger

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/repository"
)

// StockDelta cambio con signo a aplicar al stock de un producto.
type StockDelta struct {
	ProductID string
	Delta     int64
}

// StockLevel stock resultante de un producto.
type StockLevel struct {
	ProductID string
	Name      string
	Stock     int64
}

// AdjustmentService aplica deltas de stock dentro de la transacción del caller.
type AdjustmentService struct{}

// ApplyDeltas bloquea cada producto (en orden de ID para evitar deadlocks), calcula
// stock + delta, rechaza si queda negativo y escribe el nuevo valor con control de versión.
// Solo modifica el stock del producto. Devuelve los niveles en el orden de entrada.
// Cualquier error debe abortar la transacción del caller: el lote es todo o nada.
func (AdjustmentService) ApplyDeltas(ctx context.Context, repo repository.ProductRepository, deltas []StockDelta) ([]StockLevel, error) {
	order := make([]StockDelta, len(deltas))
	copy(order, deltas)
	sort.SliceStable(order, func(i, j int) bool { return order[i].ProductID < order[j].ProductID })

	levels := make(map[string]StockLevel, len(order))
	for _, d := range order {
		p, err := repo.GetForUpdate(ctx, d.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, err
			}
			return nil, &domain.AdjustmentError{ProductID: d.ProductID, Err: err}
		}
		if p == nil {
			return nil, &domain.ProductNotFoundError{ProductID: d.ProductID}
		}
		if d.Delta > 0 && p.Stock > math.MaxInt64-d.Delta {
			return nil, domain.ErrInvalidQuantity
		}
		newStock := p.Stock + d.Delta
		if newStock < 0 {
			return nil, &domain.InsufficientStockError{
				ProductID: d.ProductID,
				Requested: -d.Delta,
				Available: p.Stock,
			}
		}
		if err := repo.UpdateStock(ctx, p.ID, newStock, p.Version); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, err
			}
			return nil, &domain.AdjustmentError{ProductID: d.ProductID, Err: err}
		}
		levels[d.ProductID] = StockLevel{ProductID: p.ID, Name: p.Name, Stock: newStock}
	}

	out := make([]StockLevel, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, levels[d.ProductID])
	}
	return out, nil
}
