package authmiddleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/belekbox-shop/internal/auth"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// New создаёт middleware, пропускающее только запросы с действующим токеном администратора.
func New(log *slog.Logger, verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "authmiddleware"

			// Заголовок Authorization в формате "Bearer <token>"
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, auth.MsgNotAuthorized)
				return
			}
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, auth.MsgNotAuthorized)
				return
			}

			if err := verifier.Verify(r.Context(), token); err != nil {
				log.Warn("admin access denied",
					slog.String("op", op),
					slog.String("method", r.Method),
					slog.String("url", r.URL.Path),
				)
				unauthorized(w, auth.MsgWrongPassword)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorResponse{Success: false, Error: msg})
}
