package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodySize caps request bodies. Scan requests are tiny; anything
// close to this limit is not a legitimate client.
const MaxBodySize = 1 << 20 // 1MB

// SecurityHeadersMiddleware adds defensive headers for JSON responses.
// Scan reports describe security findings; they must never be sniffed
// into another content type or cached by an intermediary.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

// BodySizeLimitMiddleware rejects oversized request bodies up front and
// caps the reader for clients that lie about Content-Length.
func BodySizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("Request body too large. Maximum size is %d bytes.", maxSize),
			})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
