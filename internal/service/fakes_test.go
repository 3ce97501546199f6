package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"

	"github.com/linemk/belekbox-shop/internal/assets"
	"github.com/linemk/belekbox-shop/internal/domain/models"
	"github.com/linemk/belekbox-shop/internal/storage"
)

// fakeProductRepo повторяет семантику SQL-репозитория в памяти
type fakeProductRepo struct {
	products map[int64]*models.Product
	nextID   int64
	listErr  error
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[int64]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakeProductRepo) ListProducts(ctx context.Context, onlyAvailable bool) ([]*models.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Product, 0, len(f.products))
	for _, p := range f.products {
		if onlyAvailable && !p.IsAvailable {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *models.Product) (int64, error) {
	f.nextID++
	product.ID = f.nextID
	cp := *product
	f.products[product.ID] = &cp
	return product.ID, nil
}

// get - копия записи, как её вернул бы SELECT
func (f *fakeProductRepo) get(id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	return f.get(id)
}

func (f *fakeProductRepo) UpdateProductTx(ctx context.Context, tx *sql.Tx, id int64, patch models.ProductPatch) error {
	p, ok := f.products[id]
	if !ok {
		return storage.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
	}
	if patch.SortOrder != nil {
		p.SortOrder = *patch.SortOrder
	}
	if patch.ImageURL != nil {
		ref := *patch.ImageURL
		p.ImageURL = &ref
	}
	return nil
}

func (f *fakeProductRepo) DeleteProductTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) SetAllAvailability(ctx context.Context, available bool) (int64, error) {
	for _, p := range f.products {
		p.IsAvailable = available
	}
	return int64(len(f.products)), nil
}

type fakeOrderRepo struct {
	orders []*models.Order
	err    error
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	order.ID = int64(len(f.orders) + 1)
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Order, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		out = append(out, f.orders[i])
	}
	return out, nil
}

// fakeImageStore запоминает сохранённые и удалённые ссылки
type fakeImageStore struct {
	saved   map[string][]byte
	deleted []string
	seq     int
	saveErr error
}

var _ assets.Store = (*fakeImageStore)(nil)

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{saved: make(map[string][]byte)}
}

func (f *fakeImageStore) Save(ctx context.Context, upload assets.Upload) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", err
	}
	f.seq++
	ref := fmt.Sprintf("/uploads/products/img%d.png", f.seq)
	f.saved[ref] = data
	return ref, nil
}

func (f *fakeImageStore) Delete(ctx context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	delete(f.saved, ref)
	return nil
}
