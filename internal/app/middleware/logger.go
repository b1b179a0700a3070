// Package middleware содержит gin-middleware сервиса.
package middleware

import (
	"time"

	"github.com/aseptimu/codepool-shortener/internal/app/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader - заголовок, через который идентификатор запроса принимается и возвращается.
const RequestIDHeader = "X-Request-ID"

type (
	responseData struct {
		status int
		size   int
	}

	loggingResponseWriter struct {
		gin.ResponseWriter
		responseData *responseData
	}
)

func (l *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := l.ResponseWriter.Write(b)
	l.responseData.size += size
	return size, err
}

func (l *loggingResponseWriter) WriteString(s string) (int, error) {
	size, err := l.ResponseWriter.WriteString(s)
	l.responseData.size += size
	return size, err
}

func (l *loggingResponseWriter) WriteHeader(statusCode int) {
	l.ResponseWriter.WriteHeader(statusCode)
	l.responseData.status = statusCode
}

// MiddlewareLogger присваивает запросу идентификатор (или берёт его из X-Request-ID)
// и после обработки пишет строку лога с результатом.
func MiddlewareLogger(sugar *zap.SugaredLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(utils.RequestIDKey, requestID)
		ctx.Header(RequestIDHeader, requestID)

		responseData := &responseData{
			size:   0,
			status: 0,
		}

		lw := loggingResponseWriter{
			ResponseWriter: ctx.Writer,
			responseData:   responseData,
		}

		ctx.Writer = &lw

		now := time.Now()
		ctx.Next()
		duration := time.Since(now)

		sugar.Infow(
			"Request",
			"uri", ctx.Request.URL.Path,
			"method", ctx.Request.Method,
			"duration", duration,
			"status", ctx.Writer.Status(),
			"size", responseData.size,
			"request_id", requestID,
		)
	}
}
