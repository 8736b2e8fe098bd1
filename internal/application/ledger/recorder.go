package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
	"github.com/jhoicas/entregas-api/internal/domain/repository"
)

// RecordInput datos para registrar una entrega/devolución.
// Customer y Warehouse ya resueltos; sus nombres se copian en el registro.
type RecordInput struct {
	Kind         entity.TransactionKind
	Customer     *entity.Customer
	Counterparty string
	Items        []entity.LineItem
	Signature    string
	Warehouse    *entity.Warehouse // opcional
	Timestamp    *time.Time        // nil = ahora
	Actor        string
	Notes        string
}

// Recorder persiste el registro inmutable de la operación. Nunca toca productos ni clientes.
type Recorder struct {
	Now   func() time.Time
	NewID func() string
}

// NewRecorder construye el recorder con reloj e IDs reales.
func NewRecorder() *Recorder {
	return &Recorder{
		Now:   time.Now,
		NewID: func() string { return uuid.New().String() },
	}
}

// Record crea la transacción. Las fallas de persistencia se devuelven como *domain.RecordingError.
func (r *Recorder) Record(ctx context.Context, repo repository.TransactionRepository, in RecordInput) (*entity.Transaction, error) {
	if in.Customer == nil || !in.Kind.Valid() {
		return nil, domain.ErrMalformedRequest
	}
	now := r.Now().UTC()
	ts := now
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		ts = in.Timestamp.UTC()
	}

	tx := &entity.Transaction{
		ID:           r.NewID(),
		Kind:         in.Kind,
		CustomerID:   in.Customer.ID,
		CustomerName: in.Customer.Name,
		Counterparty: in.Counterparty,
		Items:        append([]entity.LineItem(nil), in.Items...),
		Signature:    in.Signature,
		Timestamp:    ts,
		Actor:        in.Actor,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Warehouse != nil {
		tx.WarehouseID = in.Warehouse.ID
		tx.WarehouseName = in.Warehouse.Name
	}

	if err := repo.Create(ctx, tx); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, &domain.RecordingError{Err: err}
	}
	return tx, nil
}
