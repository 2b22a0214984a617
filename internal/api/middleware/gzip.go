package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

type gzipWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipWriter) Write(b []byte) (int, error) { return w.gz.Write(b) }

func (w *gzipWriter) WriteString(s string) (int, error) { return w.gz.Write([]byte(s)) }

// Gzip compresses responses for clients that accept it. Applied to the
// content snapshot endpoint, whose payload is by far the largest the
// service serves.
func Gzip() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz := gzip.NewWriter(c.Writer)
		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")

		wrapped := &gzipWriter{ResponseWriter: c.Writer, gz: gz}
		c.Writer = wrapped
		defer func() {
			gz.Close()
			c.Writer = wrapped.ResponseWriter
		}()

		c.Next()
	}
}
