package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
	"github.com/jhoicas/entregas-api/internal/domain/inventory"
	"github.com/jhoicas/entregas-api/pkg/logger"
)

const tracerName = "github.com/jhoicas/entregas-api/internal/application/ledger"

// State etapa del flujo de una entrega/devolución.
type State string

const (
	StateReceived   State = "received"
	StateValidating State = "validating"
	StateAdjusting  State = "adjusting"
	StateRecording  State = "recording"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// FailedError error final del flujo con la etapa en la que ocurrió.
// errors.Is / errors.As llegan a la causa vía Unwrap.
type FailedError struct {
	State State
	Err   error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// StockRequest solicitud de entrega (issue) o devolución (credit).
type StockRequest struct {
	CustomerID   string        `validate:"required"`
	Counterparty string        `validate:"required"`
	Items        []RequestItem `validate:"required,min=1,dive"`
	Signature    string
	WarehouseID  string
	Timestamp    *time.Time
	Actor        string
	Notes        string
}

// RequestItem línea pedida: producto del catálogo o entrada manual (sin stock).
type RequestItem struct {
	ProductID   string
	ManualName  string `validate:"required_without=ProductID"`
	ManualSKU   string
	Quantity    int64
	WarehouseID string
}

// StockResult transacción registrada y stock resultante de cada producto tocado.
type StockResult struct {
	Transaction  *entity.Transaction
	UpdatedStock []StockLevel
}

// Orchestrator coordina validación, ajuste de stock y registro en una sola transacción de BD.
type Orchestrator struct {
	txRunner    TxRunner
	adjuster    AdjustmentService
	recorder    *Recorder
	events      EventPublisher
	validate    *validator.Validate
	log         *logger.Logger
	tracer      trace.Tracer
	maxAttempts int
}

// Option configura el orquestador.
type Option func(*Orchestrator)

// WithEventPublisher publica TransactionRecorded tras cada commit.
func WithEventPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) { o.events = p }
}

// WithMaxAttempts intentos ante conflicto de concurrencia (mínimo 1).
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.maxAttempts = n
		}
	}
}

// WithRecorder reemplaza el recorder (reloj e IDs fijos en tests).
func WithRecorder(r *Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithTracer usa un tracer distinto al global.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(txRunner TxRunner, log *logger.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	o := &Orchestrator{
		txRunner:    txRunner,
		recorder:    NewRecorder(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		log:         log.Component("ledger"),
		tracer:      otel.Tracer(tracerName),
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IssueStock registra una entrega: descuenta stock de cada producto referenciado.
func (o *Orchestrator) IssueStock(ctx context.Context, req StockRequest) (*StockResult, error) {
	return o.process(ctx, entity.TransactionKindIssue, req)
}

// CreditStock registra una devolución: suma stock de cada producto referenciado.
func (o *Orchestrator) CreditStock(ctx context.Context, req StockRequest) (*StockResult, error) {
	return o.process(ctx, entity.TransactionKindCredit, req)
}

func (o *Orchestrator) process(ctx context.Context, kind entity.TransactionKind, req StockRequest) (*StockResult, error) {
	req = normalize(req)
	ctx, span := o.tracer.Start(ctx, "ledger."+string(kind), trace.WithAttributes(
		attribute.String("ledger.kind", string(kind)),
		attribute.String("ledger.customer_id", req.CustomerID),
		attribute.Int("ledger.items", len(req.Items)),
	))
	defer span.End()

	zl := o.log.Zerolog().With().Str("kind", string(kind)).Str("customer_id", req.CustomerID).Logger()
	o.transition(span, &zl, StateReceived)

	if err := o.checkRequest(req); err != nil {
		return nil, o.fail(span, &zl, StateReceived, err)
	}

	dir := inventory.Issue
	if kind == entity.TransactionKindCredit {
		dir = inventory.Credit
	}

	var (
		result *StockResult
		state  State
	)
	for attempt := 1; ; attempt++ {
		state = StateValidating
		err := o.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
			res, err := o.execute(ctx, repos, kind, dir, req, &state, &zl, span)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt < o.maxAttempts {
			zl.Warn().Int("attempt", attempt).Str("state", string(state)).Msg("conflicto de concurrencia, reintentando")
			span.AddEvent("retry", trace.WithAttributes(attribute.Int("ledger.attempt", attempt)))
			continue
		}
		return nil, o.fail(span, &zl, state, err)
	}

	span.SetAttributes(attribute.String("ledger.transaction_id", result.Transaction.ID))
	zl = zl.With().Str("transaction_id", result.Transaction.ID).Logger()
	o.transition(span, &zl, StateCompleted)
	zl.Info().Int64("total_quantity", result.Transaction.TotalQuantity()).Msg("transacción registrada")

	if o.events != nil {
		if err := o.events.PublishTransactionRecorded(ctx, result.Transaction, result.UpdatedStock); err != nil {
			zl.Warn().Err(err).Msg("no se pudo publicar el evento de transacción")
		}
	}
	return result, nil
}

// execute corre dentro de la transacción de BD. Cualquier error provoca Rollback.
func (o *Orchestrator) execute(
	ctx context.Context,
	repos Repos,
	kind entity.TransactionKind,
	dir inventory.Direction,
	req StockRequest,
	state *State,
	zl *zerolog.Logger,
	span trace.Span,
) (*StockResult, error) {
	*state = StateValidating
	o.transition(span, zl, StateValidating)

	customer, err := repos.Customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("cliente %s: %w", req.CustomerID, err)
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	warehouses, err := resolveWarehouses(ctx, repos, req)
	if err != nil {
		return nil, err
	}

	lines := make([]inventory.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	totals := inventory.Aggregate(lines)

	// Bloqueo en orden de ID, igual que ApplyDeltas.
	locked := make([]inventory.Line, len(totals))
	copy(locked, totals)
	sort.Slice(locked, func(i, j int) bool { return locked[i].ProductID < locked[j].ProductID })

	products := make(map[string]*entity.Product, len(locked))
	for _, l := range locked {
		p, err := repos.Products.GetForUpdate(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", l.ProductID, err)
		}
		if p == nil {
			return nil, &domain.ProductNotFoundError{ProductID: l.ProductID}
		}
		if err := inventory.Validate(p.ID, p.Stock, l.Quantity, dir); err != nil {
			return nil, err
		}
		products[l.ProductID] = p
	}

	*state = StateAdjusting
	o.transition(span, zl, StateAdjusting)

	deltas := make([]StockDelta, 0, len(totals))
	for _, l := range totals {
		deltas = append(deltas, StockDelta{ProductID: l.ProductID, Delta: inventory.SignedDelta(l.Quantity, dir)})
	}
	levels, err := o.adjuster.ApplyDeltas(ctx, repos.Products, deltas)
	if err != nil {
		return nil, err
	}

	*state = StateRecording
	o.transition(span, zl, StateRecording)

	items := make([]entity.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		li := entity.LineItem{
			ProductID:   it.ProductID,
			ManualName:  it.ManualName,
			ManualSKU:   it.ManualSKU,
			Quantity:    it.Quantity,
			WarehouseID: it.WarehouseID,
		}
		if p, ok := products[it.ProductID]; ok {
			li.ProductName = p.Name
		}
		if w, ok := warehouses[it.WarehouseID]; ok {
			li.WarehouseName = w.Name
		}
		items = append(items, li)
	}

	tx, err := o.recorder.Record(ctx, repos.Transactions, RecordInput{
		Kind:         kind,
		Customer:     customer,
		Counterparty: req.Counterparty,
		Items:        items,
		Signature:    req.Signature,
		Warehouse:    warehouses[req.WarehouseID],
		Timestamp:    req.Timestamp,
		Actor:        req.Actor,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &StockResult{Transaction: tx, UpdatedStock: levels}, nil
}

// checkRequest valida la forma de la solicitud sin tocar el almacén.
func (o *Orchestrator) checkRequest(req StockRequest) error {
	if err := o.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrMalformedRequest, verrs[0].Namespace())
		}
		return domain.ErrMalformedRequest
	}
	var total int64
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return domain.ErrInvalidQuantity
		}
		// La suma de líneas debe caber en int64.
		if it.Quantity > math.MaxInt64-total {
			return domain.ErrInvalidQuantity
		}
		total += it.Quantity
	}
	return nil
}

func (o *Orchestrator) transition(span trace.Span, zl *zerolog.Logger, s State) {
	span.AddEvent(string(s))
	zl.Debug().Str("state", string(s)).Msg("transición de estado")
}

func (o *Orchestrator) fail(span trace.Span, zl *zerolog.Logger, s State, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(s))
	ev := zl.Warn()
	if errors.Is(err, domain.ErrAdjustment) || errors.Is(err, domain.ErrRecording) {
		ev = zl.Error()
	}
	ev.Err(err).Str("state", string(StateFailed)).Str("failed_at", string(s)).Msg("transacción rechazada")
	return &FailedError{State: s, Err: err}
}

// resolveWarehouses carga la bodega de la cabecera y las de cada línea. IDs vacíos se ignoran.
func resolveWarehouses(ctx context.Context, repos Repos, req StockRequest) (map[string]*entity.Warehouse, error) {
	ids := make([]string, 0, len(req.Items)+1)
	if req.WarehouseID != "" {
		ids = append(ids, req.WarehouseID)
	}
	for _, it := range req.Items {
		if it.WarehouseID != "" {
			ids = append(ids, it.WarehouseID)
		}
	}
	out := make(map[string]*entity.Warehouse, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		w, err := repos.Warehouses.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("bodega %s: %w", id, err)
		}
		if w == nil {
			return nil, domain.ErrWarehouseNotFound
		}
		out[id] = w
	}
	return out, nil
}

func normalize(req StockRequest) StockRequest {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.Counterparty = strings.TrimSpace(req.Counterparty)
	req.WarehouseID = strings.TrimSpace(req.WarehouseID)
	req.Notes = strings.TrimSpace(req.Notes)
	items := make([]RequestItem, len(req.Items))
	for i, it := range req.Items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.ManualName = strings.TrimSpace(it.ManualName)
		it.ManualSKU = strings.TrimSpace(it.ManualSKU)
		it.WarehouseID = strings.TrimSpace(it.WarehouseID)
		items[i] = it
	}
	if req.Items != nil {
		req.Items = items
	}
	return req
}
