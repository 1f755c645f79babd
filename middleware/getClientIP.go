package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP keys rate limiting and logs by caller address. Forwarding headers
// are trusted as-is, so the service must sit behind a proxy that overwrites them.
func getClientIP(c *gin.Context) string {
	// X-Forwarded-For may carry a chain; the first entry is the original client.
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if first := stripPort(strings.TrimSpace(ips[0])); first != "" {
			return first
		}
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return stripPort(strings.TrimSpace(xri))
	}

	return stripPort(c.Request.RemoteAddr)
}

// stripPort drops a trailing ":port" from an "ip:port" or "[ipv6]:port" address.
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
