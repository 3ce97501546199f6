package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linemk/belekbox-shop/internal/domain/models"
	"github.com/linemk/belekbox-shop/internal/storage"
)

const orderNumberPrefix = "BB"

// OrderService принимает заказы из корзины и готовит ссылку для WhatsApp.
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderResult, error)
	ListAll(ctx context.Context) ([]*models.Order, error)
}

// CreateOrderInput - данные формы оформления заказа
type CreateOrderInput struct {
	ItemsPayload  string // корзина в JSON
	TotalAmount   int
	ClientPhone   string
	ClientComment string
}

type OrderResult struct {
	OrderNumber string
	WhatsAppURL string
}

type orderService struct {
	log            *slog.Logger
	orderRepo      storage.OrderStorage
	whatsAppNumber string
	loc            *time.Location
	now            func() time.Time
}

type OrderOption func(*orderService)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) OrderOption {
	return func(s *orderService) { s.now = now }
}

// WithLocation задаёт часовой пояс, по которому берётся дата в номере заказа
func WithLocation(loc *time.Location) OrderOption {
	return func(s *orderService) { s.loc = loc }
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, whatsAppNumber string, opts ...OrderOption) OrderService {
	s := &orderService{
		log:            log,
		orderRepo:      orderRepo,
		whatsAppNumber: whatsAppNumber,
		loc:            time.Local,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create проверяет корзину, сверяет сумму, сохраняет заказ и возвращает номер и ссылку.
func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*OrderResult, error) {
	const op = "service.OrderService.Create"
	logger := s.log.With(slog.String("op", op))

	items, err := parseCart(input.ItemsPayload)
	if err != nil {
		logger.Warn("rejected cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// сумма от клиента не принимается на веру
	total, err := cartTotal(items)
	if err != nil {
		logger.Warn("rejected cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if total != input.TotalAmount {
		logger.Warn("total mismatch", slog.Int("submitted", input.TotalAmount), slog.Int("computed", total))
		return nil, fmt.Errorf("%s: %w", op, invalidPayload(
			fmt.Sprintf("Сумма заказа не совпадает: ожидалось %d сом", total), nil))
	}

	order := &models.Order{
		OrderNumber:   GenerateOrderNumber(s.now().In(s.loc)),
		Items:         items,
		ClientPhone:   optional(input.ClientPhone),
		ClientComment: optional(input.ClientComment),
		TotalAmount:   total,
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		logger.Error("failed to save order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	message := ComposeHandoffMessage(order)
	logger.Info("order created",
		slog.String("orderNumber", order.OrderNumber),
		slog.Int("items", len(items)),
		slog.Int("total", total),
	)

	return &OrderResult{
		OrderNumber: order.OrderNumber,
		WhatsAppURL: BuildHandoffURL(s.whatsAppNumber, message),
	}, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.ListAll"

	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// GenerateOrderNumber формирует номер вида BB-YYYYMMDD-XXXXXX
func GenerateOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, t.Format("20060102"), suffix)
}

// parseCart разбирает корзину и проверяет каждую строку
func parseCart(payload string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, invalidPayload("Неверный формат товаров", err)
	}
	if len(items) == 0 {
		return nil, invalidPayload("Корзина пуста", nil)
	}
	for i, item := range items {
		if err := validate.Struct(item); err != nil {
			return nil, invalidPayload(fmt.Sprintf("Неверная позиция %d в корзине", i+1), err)
		}
	}
	return items, nil
}

// cartTotal считает сумму в int64 и не допускает выхода за пределы столбца total_amount
func cartTotal(items []models.CartItem) (int, error) {
	var total int64
	for i, item := range items {
		total += int64(item.Quantity) * int64(item.Price)
		if total > models.MaxAmount {
			return 0, invalidPayload(fmt.Sprintf("Сумма заказа слишком велика (позиция %d)", i+1), nil)
		}
	}
	return int(total), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
