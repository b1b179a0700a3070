package utils

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDKey - ключ, под которым middleware кладёт идентификатор запроса в gin.Context.
const RequestIDKey = "requestID"

// LogRequest пишет в debug-лог вызванный эндпоинт вместе с идентификатором запроса.
func LogRequest(c *gin.Context, logger *zap.SugaredLogger) {
	logger.Debugw("Endpoint called",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"remote_addr", c.ClientIP(),
		"request_id", c.GetString(RequestIDKey),
	)
}
