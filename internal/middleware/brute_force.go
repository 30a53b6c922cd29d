package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/security"
)

// BruteForceGuard tracks per-key-hash authentication failures and blocks
// keys that exceed the failure threshold. The tracking logic lives in the
// security package; this alias keeps middleware signatures self-contained.
type BruteForceGuard = security.BruteForceGuard

// NewBruteForceGuard creates a new guard and starts a background cleanup
// goroutine that stops when ctx is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	return security.NewBruteForceGuard(ctx, log)
}

// BruteForceMiddleware returns middleware that blocks requests from locked-out API keys.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			c.Next()
			return
		}
		if guard.IsBlocked(apiKey) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			c.Abort()
			return
		}

		c.Next()
	}
}
