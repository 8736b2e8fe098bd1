package repository

import (
	"context"

	"github.com/jhoicas/entregas-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStock escribe el nuevo stock si la versión coincide con expectedVersion;
	// si no coincide devuelve domain.ErrConflict. Incrementa la versión.
	UpdateStock(ctx context.Context, id string, stock, expectedVersion int64) error
	// Update modifica datos descriptivos; nunca el stock.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
