package httpmiddleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// RateLimit enforces a per-client-IP limit backed by an in-memory store.
// Every response carries the standard X-RateLimit headers; over-limit
// requests get a JSON 429.
func RateLimit(rate limiter.Rate) gin.HandlerFunc {
	instance := limiter.New(memory.NewStore(), rate, limiter.WithTrustForwardHeader(true))

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		lctx, err := instance.Get(ctx, instance.GetIPKey(c.Request))
		if err != nil {
			zctx.From(ctx).Error("rate limiter failed", zap.Error(err))
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
