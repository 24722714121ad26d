package routes

import (
	"github.com/gin-gonic/gin"

	authmw "github.com/GoSim-25-26J-441/go-energy-analysis/internal/auth/middleware"
	energyhttp "github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/http"
)

type V1Deps struct {
	Energy   *energyhttp.Handler
	Verifier authmw.TokenVerifier
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	if dep.Verifier != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	}

	dep.Energy.Register(api)
}
