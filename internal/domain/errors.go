package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Flujo de entregas/devoluciones.
	ErrMalformedRequest  = errors.New("solicitud incompleta")
	ErrInvalidQuantity   = errors.New("la cantidad debe ser un entero positivo")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrCustomerNotFound  = fmt.Errorf("cliente: %w", ErrNotFound)
	ErrWarehouseNotFound = fmt.Errorf("bodega: %w", ErrNotFound)
	ErrAdjustment        = errors.New("no se pudo ajustar el stock")
	ErrRecording         = errors.New("no se pudo registrar la transacción")
)

// InsufficientStockError detalla el rechazo de una salida: producto, cantidad pedida y disponible.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", e.ProductID, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ProductNotFoundError identifica el producto inexistente referenciado por una línea.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto no encontrado: %s", e.ProductID)
}

// Is permite errors.Is(err, ErrProductNotFound) y errors.Is(err, ErrNotFound).
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound || target == ErrNotFound
}

// AdjustmentError falla de escritura del stock de un producto.
type AdjustmentError struct {
	ProductID string
	Err       error
}

func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("ajuste de stock %s: %v", e.ProductID, e.Err)
}

func (e *AdjustmentError) Unwrap() error { return e.Err }

func (e *AdjustmentError) Is(target error) bool { return target == ErrAdjustment }

// RecordingError falla al persistir la transacción. La tx de BD revierte los ajustes ya aplicados.
type RecordingError struct {
	Err error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("registro de transacción: %v", e.Err)
}

func (e *RecordingError) Unwrap() error { return e.Err }

func (e *RecordingError) Is(target error) bool { return target == ErrRecording }
