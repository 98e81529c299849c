package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/session"
)

var startTime = time.Now()

const serverVersion = "1.2.0"

// HealthHandler provides health check endpoints
type HealthHandler struct {
	db     *pgxpool.Pool
	store  session.Store
	logger *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler. db is nil when the server
// runs against in-memory storage.
func NewHealthHandler(db *pgxpool.Pool, store session.Store, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{db: db, store: store, logger: logger}
}

// Check handles GET /api/v1/health (liveness probe)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: serverVersion,
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /api/v1/health/ready (readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:  "ready",
		Version: serverVersion,
		Uptime:  time.Since(startTime).String(),
	}
	code := http.StatusOK

	if h.db != nil {
		status.Database = "connected"
		if err := h.db.Ping(r.Context()); err != nil {
			status.Status = "not ready"
			status.Database = "disconnected"
			code = http.StatusServiceUnavailable
		}
	} else {
		status.Database = "in-memory"
	}

	if p, ok := h.store.(interface{ Ping(ctx context.Context) error }); ok {
		status.Redis = "connected"
		if err := p.Ping(r.Context()); err != nil {
			status.Status = "not ready"
			status.Redis = "disconnected"
			code = http.StatusServiceUnavailable
		}
	} else {
		status.Redis = "in-memory"
	}

	respondJSON(w, code, status)
}
