package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	authctx "github.com/GoSim-25-26J-441/go-energy-analysis/internal/auth"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client satisfies it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logging.New(c.Request.Context()).LogWarnf("firebase_auth", "rejected token: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authctx.CtxFirebaseUID, decodedToken.UID)
		if email, ok := decodedToken.Claims["email"].(string); ok {
			c.Set(authctx.CtxEmail, email)
		}

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
