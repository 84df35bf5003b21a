package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthCheck handles GET /health
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse "Redis unreachable"
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	if err := h.redis.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Redis unreachable")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// CacheMetrics handles GET /cache/metrics
func (h *Handler) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		SendJSONSuccess(w, http.StatusOK, map[string]string{"cache": "disabled"})
		return
	}
	SendJSONSuccess(w, http.StatusOK, h.cache.GetMetricsSnapshot())
}
