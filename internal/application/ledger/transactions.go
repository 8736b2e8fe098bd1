package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/entregas-api/internal/application/dto"
	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
	"github.com/jhoicas/entregas-api/internal/domain/repository"
)

// TransactionService consultas y edición de datos no contables de transacciones registradas.
type TransactionService struct {
	repo repository.TransactionRepository
	now  func() time.Time
}

// NewTransactionService construye el servicio.
func NewTransactionService(repo repository.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo, now: time.Now}
}

// GetByID devuelve la transacción o domain.ErrNotFound.
func (s *TransactionService) GetByID(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToTransactionResponse(t)
	return &out, nil
}

// List lista transacciones filtradas por tipo y cliente (orden: más recientes primero).
func (s *TransactionService) List(ctx context.Context, kind, customerID string, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	page.DefaultPage()
	k := entity.TransactionKind(strings.TrimSpace(kind))
	if k != "" && !k.Valid() {
		return nil, domain.ErrInvalidInput
	}
	list, err := s.repo.List(ctx, repository.TransactionFilter{
		Kind:       k,
		CustomerID: strings.TrimSpace(customerID),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, ToTransactionResponse(t))
	}
	return &dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update modifica contraparte, notas y firma. Líneas y stock no se tocan.
func (s *TransactionService) Update(ctx context.Context, id string, in dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Counterparty != nil {
		c := strings.TrimSpace(*in.Counterparty)
		if c == "" {
			return nil, domain.ErrInvalidInput
		}
		t.Counterparty = c
	}
	if in.Notes != nil {
		t.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.Signature != nil {
		t.Signature = *in.Signature
	}
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	out := ToTransactionResponse(t)
	return &out, nil
}

func (s *TransactionService) get(ctx context.Context, id string) (*entity.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
