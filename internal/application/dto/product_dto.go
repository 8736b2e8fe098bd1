package dto

import "time"

// CreateProductRequest entrada para crear un producto. Stock es el inventario inicial (>= 0).
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	SKU         string `json:"sku" validate:"max=100"`
	Description string `json:"description"`
	Stock       int64  `json:"stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock: se maneja vía entregas/devoluciones).
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	SKU         *string `json:"sku" validate:"omitempty,max=100"`
	Description *string `json:"description"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku,omitempty"`
	Description string    `json:"description,omitempty"`
	Stock       int64     `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
