package entity

import "time"

// Product representa un producto del catálogo con su stock disponible.
// Stock solo lo modifica el flujo de entregas/devoluciones; Version se incrementa en cada escritura de stock.
type Product struct {
	ID          string
	Name        string
	SKU         string // opcional
	Description string
	Stock       int64 // nunca negativo
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
