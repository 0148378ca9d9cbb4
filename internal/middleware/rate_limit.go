package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vitrine_admin/internal/cache"
)

const (
	// APIMaxRequests par minute et par utilisateur sur les endpoints du dashboard
	APIMaxRequests = 100
	APICooldown    = 1 * time.Minute
)

// APIRateLimit limite le débit par utilisateur authentifié (par IP sinon).
// Sans Redis configuré, la limite est désactivée.
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cache.RedisClient == nil {
			c.Next()
			return
		}

		who := c.GetString("user_id")
		if who == "" {
			who = c.ClientIP()
		}
		key := "rate:api:" + who

		ctx := context.Background()
		pipe := cache.RedisClient.Pipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, APICooldown)
		if _, err := pipe.Exec(ctx); err != nil {
			// Redis en panne ne doit pas bloquer le dashboard
			c.Next()
			return
		}

		count := incr.Val()
		if count > APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes. Réessayez dans une minute",
				"retry_after": int(APICooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", APIMaxRequests-count))
		c.Next()
	}
}
