package entity

import "time"

// TransactionKind tipo de transacción de stock.
type TransactionKind string

const (
	TransactionKindIssue  TransactionKind = "issue"  // entrega: descuenta stock
	TransactionKindCredit TransactionKind = "credit" // devolución: suma stock
)

// Valid indica si el tipo es uno de los soportados.
func (k TransactionKind) Valid() bool {
	return k == TransactionKindIssue || k == TransactionKindCredit
}

// Transaction registro inmutable de una entrega o devolución.
// CustomerName y WarehouseName se copian al crear el registro para que el histórico
// no cambie si el cliente o la bodega se renombran o eliminan.
type Transaction struct {
	ID            string
	Kind          TransactionKind
	CustomerID    string
	CustomerName  string
	Counterparty  string // quién recibió / quién devolvió
	Items         []LineItem
	Signature     string // imagen de firma (data URL o base64), opcional
	WarehouseID   string
	WarehouseName string
	Timestamp     time.Time
	Actor         string // usuario que realizó la operación
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalQuantity suma las cantidades de todas las líneas.
func (t *Transaction) TotalQuantity() int64 {
	var total int64
	for _, it := range t.Items {
		total += it.Quantity
	}
	return total
}

// LineItem línea de una transacción. Pertenece a la transacción (embebida, sin ciclo de vida propio).
// Si ProductID está vacío es una línea manual (ManualName/ManualSKU) que no mueve stock.
type LineItem struct {
	ProductID     string `json:"product_id,omitempty"`
	ProductName   string `json:"product_name,omitempty"`
	ManualName    string `json:"manual_name,omitempty"`
	ManualSKU     string `json:"manual_sku,omitempty"`
	Quantity      int64  `json:"quantity"`
	WarehouseID   string `json:"warehouse_id,omitempty"`
	WarehouseName string `json:"warehouse_name,omitempty"`
}

// IsManual indica si la línea no referencia un producto del catálogo.
func (li LineItem) IsManual() bool { return li.ProductID == "" }
