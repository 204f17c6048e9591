package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/pkg/security/auth"
	"go.uber.org/zap"
)

const (
	bearerSchema = "Bearer "
	userIDKey    = "user_id"
	emailKey     = "email"
)

// NewAuthMiddleware verifies the bearer token minted by the identity
// provider and stores the caller's id in the context.
func NewAuthMiddleware(verifier *auth.Verifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Browsers cannot set headers on websocket upgrades.
			if token := c.Query("access_token"); token != "" && c.IsWebsocket() {
				authHeader = bearerSchema + token
			}
		}
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := verifier.ValidateToken(authHeader[len(bearerSchema):])
		if err != nil {
			logger.Debug("Token validation failed", zap.Error(err), zap.String("path", c.FullPath()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// RateLimitMiddleware limits requests per authenticated user, or per client
// IP before authentication has run.
func RateLimitMiddleware(limiter auth.RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = "user:" + userID.String()
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Fail open; Redis trouble should not take the API down.
			logger.Error("Rate limiter error", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":    "rate limit exceeded",
				"reset_in": time.Until(decision.ResetAt).Round(time.Second).String(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

// GetEmail returns the address carried by the token, if any.
func GetEmail(c *gin.Context) string {
	return c.GetString(emailKey)
}
