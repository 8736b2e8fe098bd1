package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/entregas-api/internal/application/dto"
	"github.com/jhoicas/entregas-api/internal/application/usecase"
	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
)

type fakeProductRepo struct {
	items map[string]*entity.Product
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	for _, ex := range r.items {
		if p.SKU != "" && ex.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) UpdateStock(context.Context, string, int64, int64) error {
	return errors.New("no usado")
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	cur := r.items[p.ID]
	cur.Name, cur.SKU, cur.Description, cur.UpdatedAt = p.Name, p.SKU, p.Description, p.UpdatedAt
	return nil
}

func (r *fakeProductRepo) List(context.Context, int, int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestProductUseCase_CreaConStockInicial(t *testing.T) {
	repo := &fakeProductRepo{items: map[string]*entity.Product{}}
	uc := usecase.NewProductUseCase(repo)

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: "  Cemento  ", SKU: "CEM-50", Stock: 12})
	require.NoError(t, err)
	assert.Equal(t, "Cemento", out.Name)
	assert.Equal(t, int64(12), out.Stock)
	assert.Equal(t, int64(1), repo.items[out.ID].Version)

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Name: "Otro", SKU: "CEM-50"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestProductUseCase_ValidaEntrada(t *testing.T) {
	uc := usecase.NewProductUseCase(&fakeProductRepo{items: map[string]*entity.Product{}})

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: "   "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Name: "Varilla", Stock: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestProductUseCase_UpdateNoTocaStock(t *testing.T) {
	repo := &fakeProductRepo{items: map[string]*entity.Product{
		"p1": {ID: "p1", Name: "Cemento", Stock: 7, Version: 3},
	}}
	uc := usecase.NewProductUseCase(repo)

	out, err := uc.Update(context.Background(), "p1", dto.UpdateProductRequest{Name: strPtr("Cemento gris"), SKU: strPtr("CG")})
	require.NoError(t, err)
	assert.Equal(t, "Cemento gris", out.Name)
	assert.Equal(t, int64(7), out.Stock)
	assert.Equal(t, int64(3), repo.items["p1"].Version)

	_, err = uc.Update(context.Background(), "p9", dto.UpdateProductRequest{Name: strPtr("x")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = uc.GetByID(context.Background(), "p9")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductUseCase_ListAplicaPaginaPorDefecto(t *testing.T) {
	uc := usecase.NewProductUseCase(&fakeProductRepo{items: map[string]*entity.Product{"p1": {ID: "p1", Name: "A"}}})
	out, err := uc.List(context.Background(), dto.PageRequest{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Page.Limit)
	assert.Len(t, out.Items, 1)
}

type fakeCustomerRepo struct {
	items map[string]*entity.Customer
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return r.items[id], nil
}

func (r *fakeCustomerRepo) List(context.Context, int, int) ([]*entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func TestCustomerUseCase_CrearYActualizar(t *testing.T) {
	repo := &fakeCustomerRepo{items: map[string]*entity.Customer{}}
	uc := usecase.NewCustomerUseCase(repo)

	c, err := uc.Create(context.Background(), dto.CreateCustomerRequest{Name: "Obra Calle 80", Phone: " 300 111 2233 "})
	require.NoError(t, err)
	assert.Equal(t, "300 111 2233", c.Phone)

	_, err = uc.Update(context.Background(), c.ID, dto.UpdateCustomerRequest{Name: strPtr(" ")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.GetByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrCustomerNotFound))
}

type fakeWarehouseRepo struct {
	items   map[string]*entity.Warehouse
	updates int
}

func (r *fakeWarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	cp := *w
	r.items[w.ID] = &cp
	return nil
}

func (r *fakeWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.updates++
	cp := *w
	r.items[w.ID] = &cp
	return nil
}

func (r *fakeWarehouseRepo) List(context.Context, int, int) ([]*entity.Warehouse, error) {
	out := make([]*entity.Warehouse, 0, len(r.items))
	for _, w := range r.items {
		out = append(out, w)
	}
	return out, nil
}

func (r *fakeWarehouseRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func TestWarehouseUseCase_CrearYActualizar(t *testing.T) {
	repo := &fakeWarehouseRepo{items: map[string]*entity.Warehouse{}}
	uc := usecase.NewWarehouseUseCase(repo)
	ctx := context.Background()

	w, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "  Bodega Norte ", Address: "Calle 13 # 45-10"})
	require.NoError(t, err)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "Bodega Norte", w.Name)
	assert.Equal(t, "Bodega Norte", repo.items[w.ID].Name)

	out, err := uc.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Notes: strPtr("solo cemento")})
	require.NoError(t, err)
	assert.Equal(t, "Bodega Norte", out.Name, "los campos omitidos se conservan")
	assert.Equal(t, "Calle 13 # 45-10", out.Address)
	assert.Equal(t, "solo cemento", repo.items[w.ID].Notes)

	out, err = uc.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Name: strPtr(" Bodega Sur ")})
	require.NoError(t, err)
	assert.Equal(t, "Bodega Sur", out.Name)

	got, err := uc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bodega Sur", got.Name)

	list, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	require.NoError(t, uc.Delete(ctx, w.ID))
	_, err = uc.GetByID(ctx, w.ID)
	assert.True(t, errors.Is(err, domain.ErrWarehouseNotFound))
}

func TestWarehouseUseCase_ValidaEntrada(t *testing.T) {
	repo := &fakeWarehouseRepo{items: map[string]*entity.Warehouse{
		"w1": {ID: "w1", Name: "Bodega Norte"},
	}}
	uc := usecase.NewWarehouseUseCase(repo)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "   "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Name: strings.Repeat("b", 201)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Update(ctx, "w1", dto.UpdateWarehouseRequest{Name: strPtr("  ")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Update(ctx, "w1", dto.UpdateWarehouseRequest{Name: strPtr("")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Update(ctx, "w9", dto.UpdateWarehouseRequest{Name: strPtr("Otra")})
	assert.True(t, errors.Is(err, domain.ErrWarehouseNotFound))

	assert.Len(t, repo.items, 1)
	assert.Equal(t, "Bodega Norte", repo.items["w1"].Name)
	assert.Zero(t, repo.updates)
}
