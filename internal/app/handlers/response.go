package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/linemk/belekbox-shop/internal/assets"
	"github.com/linemk/belekbox-shop/internal/auth"
	"github.com/linemk/belekbox-shop/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse - тело любого неуспешного ответа API
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SuccessResponse - ответ без данных
type SuccessResponse struct {
	Success bool `json:"success"`
}

const (
	msgInternal     = "Внутренняя ошибка сервера"
	msgNotFound     = "Товар не найден"
	msgUnauthorized = auth.MsgWrongPassword
	msgBadImage     = "Недопустимый формат изображения"
	msgTooLarge     = "Изображение слишком большое"
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeBadRequest(w http.ResponseWriter, logger *slog.Logger, msg string) {
	writeJSON(w, logger, http.StatusBadRequest, ErrorResponse{Success: false, Error: msg})
}

// writeError переводит ошибку слоя сервисов в HTTP-ответ.
// Текст внутренних ошибок клиенту не отдаётся.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := http.StatusInternalServerError, msgInternal

	var payloadErr *service.PayloadError
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, service.ErrProductNotFound):
		status, msg = http.StatusNotFound, msgNotFound
	case errors.As(err, &payloadErr):
		status, msg = http.StatusBadRequest, payloadErr.Reason
	case errors.Is(err, assets.ErrUnsupportedImage):
		status, msg = http.StatusBadRequest, msgBadImage
	case errors.Is(err, assets.ErrTooLarge):
		status, msg = http.StatusBadRequest, msgTooLarge
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
	} else {
		logger.Warn("request rejected", slog.Int("status", status), slog.Any("error", err))
	}
	writeJSON(w, logger, status, ErrorResponse{Success: false, Error: msg})
}
