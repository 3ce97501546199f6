package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/belekbox-shop/internal/domain/models"
)

var ErrOrderNumberTaken = errors.New("order number already exists")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder сохраняет заказ, заполняя ID и CreatedAt.
	CreateOrder(ctx context.Context, order *models.Order) error
	// ListOrders возвращает все заказы, новые первыми.
	ListOrders(ctx context.Context) ([]*models.Order, error)
}

// orderRepository - конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

// CreateOrder вставляет новый заказ в таблицу orders, корзина хранится в items_json.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	items := order.Items
	if items == nil {
		items = []models.CartItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}

	query := `INSERT INTO orders (order_number, items_json, client_phone, client_comment, total_amount)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query,
		order.OrderNumber, string(itemsJSON), nullable(order.ClientPhone), nullable(order.ClientComment), order.TotalAmount,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: %s", ErrOrderNumberTaken, order.OrderNumber)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT id, order_number, items_json, client_phone, client_comment, total_amount, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		var itemsJSON string
		o := &models.Order{}
		if err := rows.Scan(&o.ID, &o.OrderNumber, &itemsJSON, &o.ClientPhone, &o.ClientComment, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items of order %s: %w", o.OrderNumber, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
