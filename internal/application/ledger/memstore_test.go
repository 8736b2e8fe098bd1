package ledger_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jhoicas/entregas-api/internal/application/ledger"
	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
	"github.com/jhoicas/entregas-api/internal/domain/repository"
)

// memState datos en memoria. Run trabaja sobre una copia y solo la publica en Commit,
// así una falla en cualquier etapa deja el estado intacto igual que un Rollback.
type memState struct {
	products     map[string]entity.Product
	customers    map[string]entity.Customer
	warehouses   map[string]entity.Warehouse
	transactions []entity.Transaction
}

func (s *memState) clone() *memState {
	c := &memState{
		products:     make(map[string]entity.Product, len(s.products)),
		customers:    make(map[string]entity.Customer, len(s.customers)),
		warehouses:   make(map[string]entity.Warehouse, len(s.warehouses)),
		transactions: append([]entity.Transaction(nil), s.transactions...),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	return c
}

type memStore struct {
	mu    sync.Mutex
	state *memState

	runs          int
	commits       int
	conflictsLeft int   // UpdateStock devuelve ErrConflict mientras sea > 0
	recordErr     error // Transactions.Create devuelve este error
	updateErr     error // UpdateStock devuelve este error
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		products:   map[string]entity.Product{},
		customers:  map[string]entity.Customer{},
		warehouses: map[string]entity.Warehouse{},
	}}
}

var _ ledger.TxRunner = (*memStore)(nil)

func (s *memStore) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	work := s.state.clone()
	if err := fn(ctx, s.reposFor(work)); err != nil {
		return err
	}
	s.state = work
	s.commits++
	return nil
}

func (s *memStore) reposFor(st *memState) ledger.Repos {
	return ledger.Repos{
		Products:     &memProducts{st: st, store: s},
		Customers:    &memCustomers{st: st},
		Warehouses:   &memWarehouses{st: st},
		Transactions: &memTransactions{st: st, store: s},
	}
}

// readRepos repos sobre el estado confirmado (lecturas fuera de transacción).
func (s *memStore) readRepos() ledger.Repos { return s.reposFor(s.state) }

func (s *memStore) addProduct(id, name string, stock int64) {
	s.state.products[id] = entity.Product{ID: id, Name: name, Stock: stock, Version: 1}
}

func (s *memStore) addCustomer(id, name string) {
	s.state.customers[id] = entity.Customer{ID: id, Name: name}
}

func (s *memStore) addWarehouse(id, name string) {
	s.state.warehouses[id] = entity.Warehouse{ID: id, Name: name}
}

func (s *memStore) stock(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.products[id].Stock
}

func (s *memStore) recorded() []entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Transaction(nil), s.state.transactions...)
}

// ── Productos ───────────────────────────────────────────────────────────────

type memProducts struct {
	st    *memState
	store *memStore
}

var _ repository.ProductRepository = (*memProducts)(nil)

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.st.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.products[p.ID] = *p
	return nil
}

func (r *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProducts) UpdateStock(_ context.Context, id string, stock, expectedVersion int64) error {
	if r.store.conflictsLeft > 0 {
		r.store.conflictsLeft--
		return domain.ErrConflict
	}
	if r.store.updateErr != nil {
		return r.store.updateErr
	}
	p, ok := r.st.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Version != expectedVersion {
		return domain.ErrConflict
	}
	if stock < 0 {
		return errors.New("violación de CHECK (stock >= 0)")
	}
	p.Stock = stock
	p.Version++
	r.st.products[id] = p
	return nil
}

func (r *memProducts) Update(_ context.Context, p *entity.Product) error {
	cur, ok := r.st.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name, cur.SKU, cur.Description = p.Name, p.SKU, p.Description
	r.st.products[p.ID] = cur
	return nil
}

func (r *memProducts) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.st.products))
	for _, p := range r.st.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (r *memProducts) Delete(_ context.Context, id string) error {
	delete(r.st.products, id)
	return nil
}

// ── Clientes y bodegas ──────────────────────────────────────────────────────

type memCustomers struct{ st *memState }

var _ repository.CustomerRepository = (*memCustomers)(nil)

func (r *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	r.st.customers[c.ID] = *c
	return nil
}

func (r *memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := r.st.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCustomers) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	out := make([]*entity.Customer, 0, len(r.st.customers))
	for _, c := range r.st.customers {
		c := c
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}

func (r *memCustomers) Update(_ context.Context, c *entity.Customer) error {
	r.st.customers[c.ID] = *c
	return nil
}

func (r *memCustomers) Delete(_ context.Context, id string) error {
	delete(r.st.customers, id)
	return nil
}

type memWarehouses struct{ st *memState }

var _ repository.WarehouseRepository = (*memWarehouses)(nil)

func (r *memWarehouses) Create(_ context.Context, w *entity.Warehouse) error {
	r.st.warehouses[w.ID] = *w
	return nil
}

func (r *memWarehouses) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *memWarehouses) Update(_ context.Context, w *entity.Warehouse) error {
	r.st.warehouses[w.ID] = *w
	return nil
}

func (r *memWarehouses) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	out := make([]*entity.Warehouse, 0, len(r.st.warehouses))
	for _, w := range r.st.warehouses {
		w := w
		out = append(out, &w)
	}
	return page(out, limit, offset), nil
}

func (r *memWarehouses) Delete(_ context.Context, id string) error {
	delete(r.st.warehouses, id)
	return nil
}

// ── Transacciones ───────────────────────────────────────────────────────────

type memTransactions struct {
	st    *memState
	store *memStore
}

var _ repository.TransactionRepository = (*memTransactions)(nil)

func (r *memTransactions) Create(_ context.Context, t *entity.Transaction) error {
	if r.store.recordErr != nil {
		return r.store.recordErr
	}
	r.st.transactions = append(r.st.transactions, *t)
	return nil
}

func (r *memTransactions) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	for _, t := range r.st.transactions {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (r *memTransactions) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for i := len(r.st.transactions) - 1; i >= 0; i-- {
		t := r.st.transactions[i]
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if f.CustomerID != "" && t.CustomerID != f.CustomerID {
			continue
		}
		out = append(out, &t)
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *memTransactions) Update(_ context.Context, t *entity.Transaction) error {
	for i := range r.st.transactions {
		if r.st.transactions[i].ID == t.ID {
			r.st.transactions[i].Counterparty = t.Counterparty
			r.st.transactions[i].Notes = t.Notes
			r.st.transactions[i].Signature = t.Signature
			r.st.transactions[i].UpdatedAt = t.UpdatedAt
			return nil
		}
	}
	return domain.ErrNotFound
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
