package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/entregas-api/internal/application/dto"
	"github.com/jhoicas/entregas-api/internal/application/ledger"
	"github.com/jhoicas/entregas-api/internal/domain"
)

// writeError traduce errores de dominio a status y código HTTP.
// Los errores de infraestructura nunca llegan al cliente: solo el código.
func writeError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	var missing *domain.ProductNotFoundError

	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente",
			Details: map[string]any{
				"product_id": insufficient.ProductID,
				"requested":  insufficient.Requested,
				"available":  insufficient.Available,
			},
		})
	case errors.As(err, &missing):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code:    "PRODUCT_NOT_FOUND",
			Message: "producto no encontrado",
			Details: map[string]any{"product_id": missing.ProductID},
		})
	case errors.Is(err, domain.ErrAdjustment):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "ADJUSTMENT_FAILED", Message: "no se pudo ajustar el stock"})
	case errors.Is(err, domain.ErrRecording):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "RECORDING_FAILED", Message: "no se pudo registrar la transacción"})
	case errors.Is(err, domain.ErrMalformedRequest):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MALFORMED_REQUEST", Message: causeMessage(err)})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: causeMessage(err)})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrCustomerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "CUSTOMER_NOT_FOUND", Message: "cliente no encontrado"})
	case errors.Is(err, domain.ErrWarehouseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "WAREHOUSE_NOT_FOUND", Message: "bodega no encontrada"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

// causeMessage quita el prefijo de etapa del flujo.
func causeMessage(err error) string {
	var failed *ledger.FailedError
	if errors.As(err, &failed) {
		return failed.Err.Error()
	}
	return err.Error()
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func missingID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
}
