package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/gbs"
)

type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Service   string          `json:"service"`
	Version   string          `json:"version"`
	DB        string          `json:"db,omitempty"`
	Redis     string          `json:"redis,omitempty"`
	Upstream  *UpstreamHealth `json:"upstream,omitempty"`
}

// UpstreamHealth summarises calls made to GBS since start
type UpstreamHealth struct {
	Calls            int64   `json:"calls"`
	Errors           int64   `json:"errors"`
	ErrorRate        float64 `json:"error_rate"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
}

type HealthHandler struct {
	serviceName string
	version     string
	db          *sql.DB
	redis       *redis.Client
}

// NewHealthHandler creates a health handler. db and rdb may be nil.
func NewHealthHandler(serviceName, version string, db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		redis:       rdb,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if h.db != nil {
		if err := h.db.PingContext(pingCtx); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(pingCtx).Err(); err != nil {
			redisStatus = "down"
		} else {
			redisStatus = "up"
		}
	}

	m := gbs.GetMetrics()
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		Redis:     redisStatus,
		Upstream: &UpstreamHealth{
			Calls:            m.Calls,
			Errors:           m.Errors,
			ErrorRate:        m.ErrorRate(),
			AverageLatencyMs: m.AverageLatency(),
		},
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
