package pkg

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const RequestIDKey = "x-request-id"

func GetClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}

	ip := c.ClientIP()

	if ip == "" {
		return "unknown"
	}

	return ip
}

// GetRequestID returns the id assigned by the request id middleware, if any.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
