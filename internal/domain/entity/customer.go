package entity

import "time"

// Customer representa un cliente. El flujo de stock solo lo referencia, nunca lo modifica.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
