package entity

import "time"

// Warehouse representa una bodega de origen/destino de la mercancía.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
