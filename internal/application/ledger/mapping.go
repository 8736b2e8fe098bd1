package ledger

import (
	"github.com/jhoicas/entregas-api/internal/application/dto"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
)

// FromDTO convierte el body HTTP en la solicitud del flujo. actor sale del token verificado.
func FromDTO(in dto.StockRequest, actor string) StockRequest {
	req := StockRequest{
		CustomerID:   in.CustomerID,
		Counterparty: in.Counterparty,
		Signature:    in.Signature,
		WarehouseID:  in.WarehouseID,
		Timestamp:    in.Timestamp,
		Actor:        actor,
		Notes:        in.Notes,
	}
	if in.Items != nil {
		req.Items = make([]RequestItem, 0, len(in.Items))
		for _, it := range in.Items {
			req.Items = append(req.Items, RequestItem{
				ProductID:   it.ProductID,
				ManualName:  it.ManualName,
				ManualSKU:   it.ManualSKU,
				Quantity:    it.Quantity,
				WarehouseID: it.WarehouseID,
			})
		}
	}
	return req
}

// ToTransactionResponse mapea la entidad al DTO de salida. La firma no se devuelve en listados.
func ToTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	items := make([]dto.LineItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		name := it.ProductName
		if it.IsManual() {
			name = it.ManualName
		}
		items = append(items, dto.LineItemResponse{
			ProductID:     it.ProductID,
			Name:          name,
			SKU:           it.ManualSKU,
			Manual:        it.IsManual(),
			Quantity:      it.Quantity,
			WarehouseID:   it.WarehouseID,
			WarehouseName: it.WarehouseName,
		})
	}
	return dto.TransactionResponse{
		ID:            t.ID,
		Kind:          string(t.Kind),
		CustomerID:    t.CustomerID,
		CustomerName:  t.CustomerName,
		Counterparty:  t.Counterparty,
		Items:         items,
		HasSignature:  t.Signature != "",
		WarehouseID:   t.WarehouseID,
		WarehouseName: t.WarehouseName,
		Timestamp:     t.Timestamp,
		Actor:         t.Actor,
		Notes:         t.Notes,
		TotalQuantity: t.TotalQuantity(),
	}
}

// ToStockResultResponse mapea el resultado de IssueStock/CreditStock.
func ToStockResultResponse(r *StockResult) dto.StockResultResponse {
	levels := make([]dto.StockLevelResponse, 0, len(r.UpdatedStock))
	for _, l := range r.UpdatedStock {
		levels = append(levels, dto.StockLevelResponse{ProductID: l.ProductID, Name: l.Name, Stock: l.Stock})
	}
	return dto.StockResultResponse{
		Transaction:  ToTransactionResponse(r.Transaction),
		UpdatedStock: levels,
	}
}
