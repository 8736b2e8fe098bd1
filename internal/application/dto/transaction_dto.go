package dto

import "time"

// StockRequest body para POST /api/deliveries y POST /api/returns.
type StockRequest struct {
	CustomerID   string             `json:"customer_id"`
	Counterparty string             `json:"counterparty"` // quién recibe / quién devuelve
	Items        []StockRequestItem `json:"items"`
	Signature    string             `json:"signature,omitempty"` // data URL de la firma
	WarehouseID  string             `json:"warehouse_id,omitempty"`
	Timestamp    *time.Time         `json:"timestamp,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

// StockRequestItem línea de la solicitud: producto del catálogo o entrada manual.
type StockRequestItem struct {
	ProductID   string `json:"product_id,omitempty"`
	ManualName  string `json:"manual_name,omitempty"`
	ManualSKU   string `json:"manual_sku,omitempty"`
	Quantity    int64  `json:"quantity"`
	WarehouseID string `json:"warehouse_id,omitempty"`
}

// LineItemResponse línea de una transacción registrada.
type LineItemResponse struct {
	ProductID     string `json:"product_id,omitempty"`
	Name          string `json:"name"`
	SKU           string `json:"sku,omitempty"`
	Manual        bool   `json:"manual"`
	Quantity      int64  `json:"quantity"`
	WarehouseID   string `json:"warehouse_id,omitempty"`
	WarehouseName string `json:"warehouse_name,omitempty"`
}

// TransactionResponse entrega o devolución registrada.
type TransactionResponse struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	CustomerID    string             `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	Counterparty  string             `json:"counterparty"`
	Items         []LineItemResponse `json:"items"`
	HasSignature  bool               `json:"has_signature"`
	WarehouseID   string             `json:"warehouse_id,omitempty"`
	WarehouseName string             `json:"warehouse_name,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
	Actor         string             `json:"actor,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	TotalQuantity int64              `json:"total_quantity"`
}

// StockLevelResponse stock resultante de un producto tras la operación.
type StockLevelResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int64  `json:"stock"`
}

// StockResultResponse respuesta de entregas/devoluciones.
type StockResultResponse struct {
	Transaction  TransactionResponse  `json:"transaction"`
	UpdatedStock []StockLevelResponse `json:"updated_stock"`
}

// UpdateTransactionRequest body para PATCH /api/transactions/:id. Items y stock no son editables.
type UpdateTransactionRequest struct {
	Counterparty *string `json:"counterparty"`
	Notes        *string `json:"notes"`
	Signature    *string `json:"signature"`
}

// TransactionListResponse lista paginada de transacciones.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
