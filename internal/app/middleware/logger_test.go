package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aseptimu/codepool-shortener/internal/app/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareLogger(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MiddlewareLogger(logger))
	var seenID string
	router.GET("/test", func(c *gin.Context) {
		seenID = c.GetString(utils.RequestIDKey)
		c.String(http.StatusOK, "hello")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	entries := obs.FilterMessage("Request").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/test", fields["uri"])
	assert.Equal(t, "GET", fields["method"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.EqualValues(t, 5, fields["size"])
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, fields["request_id"])
	assert.Equal(t, seenID, w.Header().Get(RequestIDHeader))
}

func TestMiddlewareLogger_KeepsIncomingRequestID(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(MiddlewareLogger(zap.New(core).Sugar()))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42", obs.All()[0].ContextMap()["request_id"])
}

func TestTrustedSubnet(t *testing.T) {
	tests := []struct {
		name   string
		cidr   string
		realIP string
		want   int
	}{
		{name: "inside subnet", cidr: "10.0.0.0/8", realIP: "10.1.2.3", want: http.StatusOK},
		{name: "outside subnet", cidr: "10.0.0.0/8", realIP: "192.168.1.1", want: http.StatusForbidden},
		{name: "missing header", cidr: "10.0.0.0/8", want: http.StatusForbidden},
		{name: "no subnet configured", realIP: "10.1.2.3", want: http.StatusForbidden},
		{name: "invalid subnet", cidr: "not-a-cidr", realIP: "10.1.2.3", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(TrustedSubnet(tt.cidr, zap.NewNop().Sugar()))
			router.GET("/internal", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/internal", nil)
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
