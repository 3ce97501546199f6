package models

import "time"

// CartItem - строка корзины покупателя
type CartItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0,max=10000"`
	Price    int    `json:"price" validate:"gte=0,max=2147483647"`
}

// Subtotal стоимость строки
func (c CartItem) Subtotal() int {
	return c.Quantity * c.Price
}

// Order представляет оформленный заказ. После создания не изменяется.
type Order struct {
	ID            int64      `json:"id"`
	OrderNumber   string     `json:"order_number"`
	Items         []CartItem `json:"items"`
	ClientPhone   *string    `json:"client_phone"`
	ClientComment *string    `json:"client_comment"`
	TotalAmount   int        `json:"total_amount"`
	CreatedAt     time.Time  `json:"created_at"`
}
