package repository

import (
	"context"

	"github.com/jhoicas/entregas-api/internal/domain/entity"
)

// TransactionFilter filtros opcionales del listado de transacciones.
type TransactionFilter struct {
	Kind       entity.TransactionKind // vacío = todos
	CustomerID string
	Limit      int
	Offset     int
}

// TransactionRepository define el puerto de persistencia para entregas y devoluciones.
// Create es solo-anexar; Update toca únicamente notas, contraparte y firma.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)
	Update(ctx context.Context, tx *entity.Transaction) error
}
