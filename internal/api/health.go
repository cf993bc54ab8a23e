package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// HealthHandler reports whether the store is reachable.
type HealthHandler struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		h.Log.Warn("health check failed", zap.Error(err))
		jsonResponse(w, h.Log, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	jsonResponse(w, h.Log, http.StatusOK, map[string]string{"status": "ok"})
}
