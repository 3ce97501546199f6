package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/belekbox-shop/internal/auth"
)

// LoginRequest запрос входа администратора
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// AdminLoginHandler обрабатывает POST /api/admin/login
func AdminLoginHandler(log *slog.Logger, verifier auth.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminLoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeBadRequest(w, logger, "invalid request")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeBadRequest(w, logger, "validation error")
			return
		}

		token, err := verifier.Login(r.Context(), req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		logger.Info("admin logged in")
		writeJSON(w, logger, http.StatusOK, LoginResponse{Success: true, Token: token})
	}
}
