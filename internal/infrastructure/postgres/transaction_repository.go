package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
	"github.com/jhoicas/entregas-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, kind, customer_id, customer_name, counterparty, items, signature,
	warehouse_id, warehouse_name, occurred_at, actor, notes, created_at, updated_at`

// TransactionRepo entregas y devoluciones en stock_transactions. Las líneas se guardan como JSONB.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create inserta el registro. Nunca sobrescribe uno existente.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	items, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	query := `
		INSERT INTO stock_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		t.ID, string(t.Kind), t.CustomerID, t.CustomerName, t.Counterparty, items, t.Signature,
		t.WarehouseID, t.WarehouseName, t.Timestamp, t.Actor, t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert transaction", err)
	}
	return nil
}

// GetByID obtiene una transacción. (nil, nil) si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	row := r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM stock_transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// List más recientes primero, con filtros opcionales por tipo y cliente.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY occurred_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update solo toca contraparte, notas y firma.
func (r *TransactionRepo) Update(ctx context.Context, t *entity.Transaction) error {
	query := `
		UPDATE stock_transactions SET counterparty = $2, notes = $3, signature = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, t.ID, t.Counterparty, t.Notes, t.Signature, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var (
		t     entity.Transaction
		kind  string
		items []byte
	)
	if err := row.Scan(
		&t.ID, &kind, &t.CustomerID, &t.CustomerName, &t.Counterparty, &items, &t.Signature,
		&t.WarehouseID, &t.WarehouseName, &t.Timestamp, &t.Actor, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Kind = entity.TransactionKind(kind)
	if err := json.Unmarshal(items, &t.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return &t, nil
}
