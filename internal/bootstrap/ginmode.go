package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}

// SetLogLevel applies LOG_LEVEL to the service logger
func SetLogLevel(level string) {
	logging.SetLevel(level)
}
