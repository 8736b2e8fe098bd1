package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/entregas-api/internal/application/dto"
	"github.com/jhoicas/entregas-api/internal/application/ledger"
)

// StockWorkflow flujo de entregas y devoluciones.
type StockWorkflow interface {
	IssueStock(ctx context.Context, req ledger.StockRequest) (*ledger.StockResult, error)
	CreditStock(ctx context.Context, req ledger.StockRequest) (*ledger.StockResult, error)
}

// LedgerHandler expone entregas (salida de stock) y devoluciones (entrada).
type LedgerHandler struct {
	workflow StockWorkflow
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(workflow StockWorkflow) *LedgerHandler {
	return &LedgerHandler{workflow: workflow}
}

// Deliver godoc
// @Summary      Registrar entrega
// @Description  Descuenta del stock las líneas de catálogo y registra la transacción en una sola operación atómica.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string            false  "Clave de idempotencia"
// @Param        body             body    dto.StockRequest  true   "Entrega"
// @Success      201  {object}  dto.StockResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *LedgerHandler) Deliver(c *fiber.Ctx) error {
	return h.handle(c, h.workflow.IssueStock)
}

// Return godoc
// @Summary      Registrar devolución
// @Description  Suma al stock las líneas de catálogo y registra la transacción en una sola operación atómica.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string            false  "Clave de idempotencia"
// @Param        body             body    dto.StockRequest  true   "Devolución"
// @Success      201  {object}  dto.StockResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *LedgerHandler) Return(c *fiber.Ctx) error {
	return h.handle(c, h.workflow.CreditStock)
}

func (h *LedgerHandler) handle(c *fiber.Ctx, run func(context.Context, ledger.StockRequest) (*ledger.StockResult, error)) error {
	var in dto.StockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := run(c.UserContext(), ledger.FromDTO(in, GetActor(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledger.ToStockResultResponse(res))
}
