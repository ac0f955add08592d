package middleware

import (
	"time"

	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger attaches a request scoped logger to the context and logs each completed request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(HeaderRequestID, reqID)

		logger := utils.GetLogger().With(zap.String("requestID", reqID))
		c.Set(utils.CtxLogger, logger)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if uid := c.GetString(utils.CtxUserID); uid != "" {
			fields = append(fields, zap.String("userID", uid))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("Request failed", fields...)
		case len(c.Errors) > 0:
			logger.Warn("Request completed with errors", append(fields, zap.String("errors", c.Errors.String()))...)
		default:
			logger.Info("Request completed", fields...)
		}
	}
}
