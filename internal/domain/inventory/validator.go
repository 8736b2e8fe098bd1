package inventory

import (
	"math"

	"github.com/jhoicas/entregas-api/internal/domain"
)

// Direction sentido del movimiento de stock.
type Direction int

const (
	// Issue salida de stock (entrega).
	Issue Direction = iota + 1
	// Credit entrada de stock (devolución).
	Credit
)

func (d Direction) String() string {
	switch d {
	case Issue:
		return "issue"
	case Credit:
		return "credit"
	default:
		return "unknown"
	}
}

// Validate decide si se acepta mover quantity unidades sobre el stock actual (servicio de dominio, puro).
// Issue: rechaza si current - quantity < 0 con *domain.InsufficientStockError.
// Credit: solo rechaza si current + quantity desborda int64. En ambos sentidos quantity debe ser >= 1.
func Validate(productID string, current, quantity int64, dir Direction) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	switch dir {
	case Issue:
		if current-quantity < 0 {
			return &domain.InsufficientStockError{
				ProductID: productID,
				Requested: quantity,
				Available: current,
			}
		}
		return nil
	case Credit:
		if current > math.MaxInt64-quantity {
			return domain.ErrInvalidQuantity
		}
		return nil
	default:
		return domain.ErrInvalidInput
	}
}

// SignedDelta convierte una cantidad positiva en el delta con signo que se aplica al stock.
func SignedDelta(quantity int64, dir Direction) int64 {
	if dir == Issue {
		return -quantity
	}
	return quantity
}
