package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/entregas-api/internal/application/dto"
)

// TransactionReader consulta y edición de datos no contables de transacciones.
type TransactionReader interface {
	GetByID(ctx context.Context, id string) (*dto.TransactionResponse, error)
	List(ctx context.Context, kind, customerID string, page dto.PageRequest) (*dto.TransactionListResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateTransactionRequest) (*dto.TransactionResponse, error)
}

// ReceiptDownloader genera el comprobante PDF de una transacción.
type ReceiptDownloader interface {
	DownloadReceipt(ctx context.Context, transactionID string) ([]byte, string, error)
}

// TransactionHandler historial de entregas y devoluciones.
type TransactionHandler struct {
	svc      TransactionReader
	receipts ReceiptDownloader
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(svc TransactionReader, receipts ReceiptDownloader) *TransactionHandler {
	return &TransactionHandler{svc: svc, receipts: receipts}
}

// List godoc
// @Summary      Listar transacciones
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        kind         query  string  false  "issue | credit"
// @Param        customer_id  query  string  false  "Filtrar por cliente"
// @Param        limit        query  int     false  "Límite (máx 100)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de paginación inválidos"})
	}
	out, err := h.svc.List(c.UserContext(), c.Query("kind"), c.Query("customer_id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener transacción
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.svc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar notas, contraparte o firma
// @Description  Las líneas y el stock no se pueden modificar después del registro.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la transacción"
// @Param        body  body  dto.UpdateTransactionRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [patch]
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.UpdateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Descargar comprobante PDF
// @Tags         transactions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/receipt [get]
func (h *TransactionHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	pdf, filename, err := h.receipts.DownloadReceipt(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}
