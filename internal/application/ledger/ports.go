package ledger

import (
	"context"

	"github.com/jhoicas/entregas-api/internal/domain/entity"
	"github.com/jhoicas/entregas-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD.
type Repos struct {
	Products     repository.ProductRepository
	Customers    repository.CustomerRepository
	Warehouses   repository.WarehouseRepository
	Transactions repository.TransactionRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD: Commit si fn devuelve nil, Rollback si no.
// Los ajustes de stock y el registro de la transacción comparten esa transacción, por lo que
// una falla en cualquier etapa no deja cambios visibles.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// EventPublisher notifica transacciones ya confirmadas (Kafka). Puede ser nil.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, tx *entity.Transaction, levels []StockLevel) error
}

// ReceiptGenerator genera el comprobante PDF de una transacción.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, data *ReceiptData) ([]byte, error)
}
