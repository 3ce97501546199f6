package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/belekbox-shop/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductLocked   = errors.New("product is locked")
)

const productColumns = "id, name, description, price, image_url, is_available, sort_order, created_at"

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	// ListProducts возвращает товары в порядке (sort_order, id), при onlyAvailable - только видимые.
	ListProducts(ctx context.Context, onlyAvailable bool) ([]*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (int64, error)
	// LockProductByIDTx блокирует строку товара до конца транзакции.
	LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
	UpdateProductTx(ctx context.Context, tx *sql.Tx, id int64, patch models.ProductPatch) error
	DeleteProductTx(ctx context.Context, tx *sql.Tx, id int64) error
	// SetAllAvailability одним запросом меняет видимость всего каталога.
	SetAllAvailability(ctx context.Context, available bool) (int64, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) ListProducts(ctx context.Context, onlyAvailable bool) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products ORDER BY sort_order, id"
	if onlyAvailable {
		query = "SELECT " + productColumns + " FROM products WHERE is_available = TRUE ORDER BY sort_order, id"
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (int64, error) {
	query := `INSERT INTO products (name, description, price, image_url, is_available, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, nullable(product.ImageURL), product.IsAvailable, product.SortOrder,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}
	return product.ID, nil
}

func (r *productRepository) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1 FOR UPDATE NOWAIT", id)
	p, err := scanProduct(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "55P03" { // lock_not_available
			return nil, fmt.Errorf("%w, please try again: %v", ErrProductLocked, err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateProductTx применяет только переданные поля: NULL в COALESCE оставляет старое значение.
func (r *productRepository) UpdateProductTx(ctx context.Context, tx *sql.Tx, id int64, patch models.ProductPatch) error {
	query := `UPDATE products SET
	              name = COALESCE($1, name),
	              description = COALESCE($2, description),
	              price = COALESCE($3, price),
	              is_available = COALESCE($4, is_available),
	              sort_order = COALESCE($5, sort_order),
	              image_url = COALESCE($6, image_url)
	          WHERE id = $7`
	res, err := tx.ExecContext(ctx, query,
		nullable(patch.Name),
		nullable(patch.Description),
		nullable(patch.Price),
		nullable(patch.IsAvailable),
		nullable(patch.SortOrder),
		nullable(patch.ImageURL),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DeleteProductTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) SetAllAvailability(ctx context.Context, available bool) (int64, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET is_available = $1", available)
	if err != nil {
		return 0, fmt.Errorf("failed to update availability: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.IsAvailable, &p.SortOrder, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// nullable превращает nil-указатель в SQL NULL
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
