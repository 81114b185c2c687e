package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LocalOnly rejects requests that do not originate from the loopback
// interface. The backend is a bridge for the local UI process, not a
// network service; binding to 127.0.0.1 covers the common case and this
// guard covers misconfigured listen addresses.
func LocalOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}

		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "this API only accepts local connections",
			})
			return
		}

		c.Next()
	}
}
