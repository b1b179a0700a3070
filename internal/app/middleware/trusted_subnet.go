package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TrustedSubnet пропускает запрос, только если X-Real-IP входит в подсеть cidr.
// Пустая подсеть закрывает доступ полностью.
func TrustedSubnet(cidr string, logger *zap.SugaredLogger) gin.HandlerFunc {
	var trustedNet *net.IPNet
	if cidr != "" {
		_, parsed, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Errorw("Invalid CIDR in config.TrustedSubnet", "value", cidr, "error", err)
		} else {
			trustedNet = parsed
		}
	}

	return func(c *gin.Context) {
		if trustedNet == nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		clientIP := net.ParseIP(c.GetHeader("X-Real-IP"))
		if clientIP == nil || !trustedNet.Contains(clientIP) {
			logger.Warnw("Rejected request from untrusted address", "path", c.FullPath(), "x_real_ip", c.GetHeader("X-Real-IP"))
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
