package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/GoSim-25-26J-441/go-energy-analysis/internal/api/http"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/api/http/routes"
	authmw "github.com/GoSim-25-26J-441/go-energy-analysis/internal/auth/middleware"
	energyhttp "github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	DB             *sql.DB
	Redis          *redis.Client
	Energy         *energyhttp.Handler
	// Verifier enables Firebase auth on /api/v1 when set
	Verifier authmw.TokenVerifier
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	routes.RegisterV1(r, routes.V1Deps{
		Energy:   dep.Energy,
		Verifier: dep.Verifier,
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
