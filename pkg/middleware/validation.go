package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/troikatech/voice-assistant/pkg/errors"
)

// ValidateUUIDParam rejects requests whose path parameter is not a UUID
func ValidateUUIDParam(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := c.Param(paramName)
		if value == "" {
			errors.BadRequest(c, paramName+" parameter is required")
			c.Abort()
			return
		}

		if _, err := uuid.Parse(value); err != nil {
			errors.BadRequest(c, "invalid "+paramName+" parameter: must be a UUID")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ValidateCallSIDParam rejects empty or oversized call identifiers
func ValidateCallSIDParam(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := c.Param(paramName)
		if value == "" || len(value) > 64 {
			errors.BadRequest(c, "invalid "+paramName+" parameter")
			c.Abort()
			return
		}
		c.Next()
	}
}
