package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"usermgmt/internal/auth"
	"usermgmt/internal/logging"
	"usermgmt/internal/users"
)

const (
	identityContextKey  = "identity"
	requestIDContextKey = "request_id"
	requestIDHeaderName = "X-Request-ID"
)

// IdentityFromContext returns the identity set by RequireAuth.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return auth.Identity{}, false
	}
	ident, ok := v.(auth.Identity)
	return ident, ok
}

// RequestLogger assigns a request ID (or honors an inbound X-Request-ID),
// echoes it in the response and logs every request with its outcome.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(requestIDHeaderName))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDContextKey, requestID)
		c.Writer.Header().Set(requestIDHeaderName, requestID)

		c.Next()

		log.Info(c.Request.Context(), "request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", float64(time.Since(startedAt).Microseconds())/1000.0,
		)
	}
}

// RequireAuth extracts the bearer token from the Authorization header and
// validates it before any protected handler runs. Every failure is a
// plain 401; the specific validation failure is never revealed.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization required"})
			return
		}

		ident, err := tokens.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		c.Set(identityContextKey, ident)
		c.Next()
	}
}

// RequireRole denies the request unless the authenticated identity holds
// the required role. Must run after RequireAuth.
func RequireRole(svc *users.Service, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization required"})
			return
		}
		if !svc.Authorize(ident, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
			return
		}
		c.Next()
	}
}
