package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type jsonResponse map[string]interface{}

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	responder
	db Pinger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{responder: newResponder(logger), db: db}
}

// Health godoc
// @Summary Проверка доступности сервиса и базы данных
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /healthz [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		h.ok(w, r, http.StatusServiceUnavailable, jsonResponse{"status": "unavailable", "database": "down"}, nil)
		return
	}
	h.ok(w, r, http.StatusOK, jsonResponse{"status": "ok", "database": "up"}, nil)
}
