package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/entregas-api/internal/application/ledger"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Las fallas de serialización o deadlock (también en Commit) se devuelven como domain.ErrConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, ReposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// ReposFor arma los repositorios sobre un Querier (pool para lecturas, tx dentro de Run).
func ReposFor(q Querier) ledger.Repos {
	return ledger.Repos{
		Products:     NewProductRepository(q),
		Customers:    NewCustomerRepository(q),
		Warehouses:   NewWarehouseRepository(q),
		Transactions: NewTransactionRepository(q),
	}
}
