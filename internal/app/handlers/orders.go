package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/linemk/belekbox-shop/internal/domain/models"
	"github.com/linemk/belekbox-shop/internal/service"
)

type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"order_number"`
	WhatsAppURL string `json:"whatsapp_url"`
}

// CreateOrderHandler обрабатывает POST /api/orders (форма корзины)
func CreateOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		if err := parseForm(r); err != nil {
			logger.Warn("invalid request: form parsing error", slog.Any("error", err))
			writeBadRequest(w, logger, "invalid request")
			return
		}

		items, ok := formValue(r, "items")
		if !ok {
			writeBadRequest(w, logger, "Неверный формат товаров")
			return
		}

		rawTotal, _ := formValue(r, "total_amount")
		total, err := strconv.Atoi(strings.TrimSpace(rawTotal))
		if err != nil {
			logger.Warn("invalid request: bad total", slog.String("total_amount", rawTotal))
			writeBadRequest(w, logger, "Неверная сумма заказа")
			return
		}

		// client_name - прежнее название поля телефона в форме
		phone, ok := formValue(r, "client_phone")
		if !ok {
			phone, _ = formValue(r, "client_name")
		}
		comment, _ := formValue(r, "client_comment")

		result, err := orders.Create(r.Context(), service.CreateOrderInput{
			ItemsPayload:  items,
			TotalAmount:   total,
			ClientPhone:   phone,
			ClientComment: comment,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, CreateOrderResponse{
			Success:     true,
			OrderNumber: result.OrderNumber,
			WhatsAppURL: result.WhatsAppURL,
		})
	}
}

// AdminListOrdersHandler обрабатывает GET /api/admin/orders, новые заказы первыми
func AdminListOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListOrdersHandler"
		logger := log.With(slog.String("op", op))

		list, err := orders.ListAll(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if list == nil {
			list = []*models.Order{}
		}
		writeJSON(w, logger, http.StatusOK, list)
	}
}
