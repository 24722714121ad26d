// Package auth verifies the Firebase users calling the energy API. Only
// identity is kept; this service stores no user records.
package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// gin context keys filled by middleware.FirebaseAuthMiddleware
const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
)

// UserFirebaseUID returns the caller's Firebase UID, or "" when the API runs
// without authentication.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}
