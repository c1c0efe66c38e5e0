package middleware

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/errors"
	"github.com/troikatech/voice-assistant/pkg/webhook"
)

const maxWebhookMemory = 8 << 20

// WebhookSignature rejects a webhook whose X-Signature does not match the
// HMAC of its raw JSON body or of its sorted form values. It must run before
// any middleware that can answer the request, such as idempotent replay.
// An empty secret disables verification.
func WebhookSignature(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			errors.BadRequest(c, "failed to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		signature := c.GetHeader(webhook.SignatureHeader)
		switch c.ContentType() {
		case binding.MIMEJSON:
			err = webhook.VerifyBodySignature(secret, body, signature)
		case binding.MIMEMultipartPOSTForm:
			if err = c.Request.ParseMultipartForm(maxWebhookMemory); err == nil {
				err = webhook.VerifyFormSignature(secret, c.Request.PostForm, signature)
			}
		default:
			if err = c.Request.ParseForm(); err == nil {
				err = webhook.VerifyFormSignature(secret, c.Request.PostForm, signature)
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if err != nil {
			logger.Warn("Rejected webhook",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			errors.Unauthorized(c, "invalid webhook signature")
			c.Abort()
			return
		}

		c.Next()
	}
}
