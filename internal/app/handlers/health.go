package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	serviceName    = "BelekBox.kg"
	serviceVersion = "1.0.0"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HealthHandler обрабатывает GET /api/health. now задаёт источник времени.
func HealthHandler(log *slog.Logger, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.HealthHandler"))
		writeJSON(w, logger, http.StatusOK, HealthResponse{
			Status:    "ok",
			Timestamp: now(),
			Service:   serviceName,
			Version:   serviceVersion,
		})
	}
}
