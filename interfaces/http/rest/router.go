package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"profile-backend/pkg/observability"
)

// Router exposes the operational surface: health, readiness and metrics. The
// profile core itself is consumed in-process by the surrounding application,
// not over REST.
type Router struct {
	db      *gorm.DB
	redis   *redis.Client
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(db *gorm.DB, redisClient *redis.Client, metrics *observability.Metrics, logger *zap.Logger) *Router {
	return &Router{
		db:      db,
		redis:   redisClient,
		metrics: metrics,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", rt.healthCheck)
	router.Get("/readyz", rt.readinessCheck)
	router.Handle("/metrics", promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))

	return router
}

// healthCheck reports process liveness
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	rt.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessCheck reports whether the store and cache are reachable. The cache
// being down degrades performance but not correctness, so only a store failure
// makes the process unready.
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok", "cache": "ok"}
	status := http.StatusOK

	sqlDB, err := rt.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if err := rt.redis.Ping(ctx).Err(); err != nil {
		checks["cache"] = "unreachable"
	}

	rt.writeJSON(w, status, checks)
}

func (rt *Router) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rt.logger.Error("response encode failed", zap.Error(err))
	}
}
