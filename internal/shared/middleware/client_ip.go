package middleware

import (
	"github.com/gin-gonic/gin"

	"publishing-backend/internal/shared/utils"
)

const ContextKeyClientIP = "client_ip"

// ClientIPMiddleware lấy IP thật của client (X-Forwarded-For, X-Real-IP, RemoteAddr)
// và gắn vào gin context cho rate limiter và request logger.
//
// Usage:
//
//	router.Use(middleware.ClientIPMiddleware())
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyClientIP, utils.ClientIP(c.Request))
		c.Next()
	}
}

// GetClientIP trả về IP đã extract, fallback sang utils.ClientIP
// khi middleware chưa chạy
func GetClientIP(c *gin.Context) string {
	if ip := c.GetString(ContextKeyClientIP); ip != "" {
		return ip
	}
	return utils.ClientIP(c.Request)
}
