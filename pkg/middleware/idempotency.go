package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyKeyHeader = "Idempotency-Key"
const idempotencyTTL = 10 * time.Minute

// responseRecorder keeps a copy of the body written by the handler
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response when a POST arrives again
// with the same Idempotency-Key. Telephony webhooks are retried on timeout and a
// replay must not run the pipeline a second time.
func IdempotencyMiddleware(redisClient *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		cacheKey := "idempotency:" + hashIdempotencyKey(key)
		ctx := c.Request.Context()

		val, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil && len(val) > 0 {
			c.Header("X-Idempotency-Key-Used", "true")
			c.Data(http.StatusOK, "application/json; charset=utf-8", val)
			c.Abort()
			return
		}
		if err != nil && err != redis.Nil {
			logger.Warn("Idempotency lookup failed", zap.Error(err))
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		if recorder.Status() != http.StatusOK || recorder.body.Len() == 0 {
			return
		}
		if err := redisClient.Set(ctx, cacheKey, recorder.body.Bytes(), idempotencyTTL).Err(); err != nil {
			logger.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

func hashIdempotencyKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
