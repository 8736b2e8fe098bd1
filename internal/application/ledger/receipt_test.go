package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/entregas-api/internal/application/dto"
	"github.com/jhoicas/entregas-api/internal/application/ledger"
	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
)

type captureGenerator struct {
	data *ledger.ReceiptData
	err  error
}

func (g *captureGenerator) GenerateReceiptPDF(_ context.Context, data *ledger.ReceiptData) ([]byte, error) {
	g.data = data
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-fake"), nil
}

func TestReceipt_ResuelveNombres(t *testing.T) {
	store := seededStore()
	o := newTestOrchestrator(store)
	req := issueReq(item("p1", 2), ledger.RequestItem{ManualName: "Tornillos", Quantity: 5})
	req.WarehouseID = "w1"
	res, err := o.IssueStock(context.Background(), req)
	require.NoError(t, err)

	// El cliente cambió de nombre después de la entrega y el producto fue eliminado.
	store.addCustomer("c1", "Ferretería El Tornillo S.A.S.")
	delete(store.state.products, "p1")

	gen := &captureGenerator{}
	svc := ledger.NewReceiptService(store.readRepos(), gen)
	pdf, filename, err := svc.DownloadReceipt(context.Background(), res.Transaction.ID)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-fake"), pdf)
	assert.Equal(t, "entrega-tx-1.pdf", filename)
	require.NotNil(t, gen.data)
	assert.Equal(t, "Ferretería El Tornillo S.A.S.", gen.data.CustomerName)
	assert.Equal(t, "Bodega Norte", gen.data.WarehouseName)
	require.Len(t, gen.data.Lines, 2)
	assert.Equal(t, "Cemento gris 50kg", gen.data.Lines[0].Name, "usa el nombre guardado")
	assert.Equal(t, "Tornillos", gen.data.Lines[1].Name)
	assert.True(t, gen.data.Lines[1].Manual)
	assert.Equal(t, int64(7), gen.data.TotalQuantity)
}

func TestReceipt_ProductoEliminadoSinNombreGuardado(t *testing.T) {
	store := seededStore()
	store.state.transactions = append(store.state.transactions, entity.Transaction{
		ID:           "legacy",
		Kind:         entity.TransactionKindCredit,
		CustomerID:   "c-borrado",
		CustomerName: "Cliente Antiguo",
		Items: []entity.LineItem{
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p-borrado", Quantity: 2},
		},
	})

	gen := &captureGenerator{}
	_, filename, err := ledger.NewReceiptService(store.readRepos(), gen).DownloadReceipt(context.Background(), "legacy")
	require.NoError(t, err)

	assert.Equal(t, "devolucion-legacy.pdf", filename)
	assert.Equal(t, "Cliente Antiguo", gen.data.CustomerName)
	assert.Equal(t, "Varilla 3/8", gen.data.Lines[0].Name)
	assert.Equal(t, ledger.DeletedProductName("p-borrado"), gen.data.Lines[1].Name)
}

func TestReceipt_Errores(t *testing.T) {
	store := seededStore()
	svc := ledger.NewReceiptService(store.readRepos(), &captureGenerator{err: errors.New("fuente no encontrada")})

	_, _, err := svc.DownloadReceipt(context.Background(), "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, _, err = svc.DownloadReceipt(context.Background(), " ")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestTransactionService_ActualizaSoloDatosNoContables(t *testing.T) {
	store := seededStore()
	res, err := newTestOrchestrator(store).IssueStock(context.Background(), issueReq(item("p1", 3)))
	require.NoError(t, err)

	svc := ledger.NewTransactionService(store.readRepos().Transactions)
	notes := "  entregado en portería "
	sig := "data:image/png;base64,AAAA"
	out, err := svc.Update(context.Background(), res.Transaction.ID, dto.UpdateTransactionRequest{Notes: &notes, Signature: &sig})
	require.NoError(t, err)

	assert.Equal(t, "entregado en portería", out.Notes)
	assert.True(t, out.HasSignature)
	assert.Equal(t, "Juan Pérez", out.Counterparty)
	assert.Equal(t, int64(3), out.TotalQuantity)
	assert.Equal(t, int64(7), store.stock("p1"))

	empty := " "
	_, err = svc.Update(context.Background(), res.Transaction.ID, dto.UpdateTransactionRequest{Counterparty: &empty})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.GetByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTransactionService_ListFiltraPorTipo(t *testing.T) {
	store := seededStore()
	o := newTestOrchestrator(store)
	_, err := o.IssueStock(context.Background(), issueReq(item("p1", 1)))
	require.NoError(t, err)
	_, err = o.CreditStock(context.Background(), issueReq(item("p1", 1)))
	require.NoError(t, err)

	svc := ledger.NewTransactionService(store.readRepos().Transactions)
	list, err := svc.List(context.Background(), "credit", "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "credit", list.Items[0].Kind)
	assert.Equal(t, 20, list.Page.Limit)

	_, err = svc.List(context.Background(), "transfer", "", dto.PageRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFromDTO_ConservaLineasYActor(t *testing.T) {
	req := ledger.FromDTO(dto.StockRequest{
		CustomerID:   "c1",
		Counterparty: "Juan",
		Items:        []dto.StockRequestItem{{ProductID: "p1", Quantity: 2}, {ManualName: "Caja", Quantity: 1}},
	}, "ana")
	assert.Equal(t, "ana", req.Actor)
	require.Len(t, req.Items, 2)
	assert.Equal(t, "Caja", req.Items[1].ManualName)

	assert.Nil(t, ledger.FromDTO(dto.StockRequest{}, "").Items)
}
