package models

import "time"

// MaxAmount - предел суммы в сомах, столбцы price и total_amount имеют тип INTEGER
const MaxAmount = 1<<31 - 1

// Product представляет подарочный бокс в каталоге
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`     // цена в сомах
	ImageURL    *string   `json:"image_url"` // ссылка на изображение, может отсутствовать
	IsAvailable bool      `json:"is_available"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProduct - данные для создания товара
type NewProduct struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Price       int    `validate:"gte=0,max=2147483647"`
	IsAvailable bool
	SortOrder   int `validate:"min=-2147483648,max=2147483647"`
}

// ProductPatch - частичное обновление товара, nil означает "не менять"
type ProductPatch struct {
	Name        *string `validate:"omitnil,min=1"`
	Description *string `validate:"omitnil,min=1"`
	Price       *int    `validate:"omitnil,gte=0,max=2147483647"`
	IsAvailable *bool
	SortOrder   *int `validate:"omitnil,min=-2147483648,max=2147483647"`
	ImageURL    *string
}
