package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewHealthHandler("test-service", "1.0.0", nil, nil)
	handler.RegisterRoutes(router)

	for _, path := range []string{"/health", "/healthz"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "test-service", response.Service)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "disabled", response.DB)
		assert.Equal(t, "disabled", response.Redis)
		assert.NotNil(t, response.Upstream)
	}
}

func TestHealthCheck_Dependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	router := gin.New()
	NewHealthHandler("energy", "dev", db, rdb).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "up", response.DB)
	assert.Equal(t, "up", response.Redis)

	mr.Close()
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "down", response.Redis)
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	NewHealthHandler("test-service", "1.0.0", nil, nil).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = logging.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "rid-123")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "rid-123", seen)
	assert.Equal(t, "rid-123", rr.Header().Get(middleware.RequestIDHeader))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, seen, rr.Header().Get(middleware.RequestIDHeader))
	assert.NotEqual(t, "rid-123", seen)
}
