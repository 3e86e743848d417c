// Package middleware holds the HTTP middlewares shared across routes:
// gzip response compression and the X-No-Compression route marker.
package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// noCompressionHeader marks a response that must be delivered verbatim.
// The audio streamer sets Content-Length and Content-Range on partial
// responses; gzip would make both wrong.
const noCompressionHeader = "X-No-Compression"

// gzipWriterPool reuses gzip writers across requests.
var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

type gzipWriter struct {
	gin.ResponseWriter
	gw *gzip.Writer
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	return g.gw.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.gw.Write([]byte(s))
}

// compressibleTypes lists the text content types eligible for
// compression; shouldCompress matches them against a Content-Type
// already set on the response, or else the request's Content-Type.
var compressibleTypes = []string{
	"application/json",
	"text/plain",
	"text/markdown",
	"text/html",
}

func shouldCompress(c *gin.Context) bool {
	if !strings.Contains(c.Request.Header.Get("Accept-Encoding"), "gzip") {
		return false
	}
	if c.Writer.Header().Get(noCompressionHeader) != "" {
		return false
	}

	contentType := c.Writer.Header().Get("Content-Type")
	if contentType == "" {
		contentType = c.ContentType()
	}
	for _, ct := range compressibleTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// CompressionMiddleware gzips the response for clients that accept it,
// skipping HEAD requests and upgraded connections. The decision is made
// before the handler runs, from Accept-Encoding, any X-No-Compression
// or Content-Type header already on the response, and otherwise the
// request's own Content-Type. Responses to requests without a compressible Content-Type
// (plain GETs, multipart uploads) are not compressed, and a marker set
// by NoCompressionMiddleware on a route group is not seen here, since
// route-group middleware runs after this global one.
func CompressionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "HEAD" ||
			c.Request.Header.Get("Connection") == "Upgrade" ||
			!shouldCompress(c) {
			c.Next()
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(gz)
		gz.Reset(c.Writer)
		defer gz.Close()

		c.Writer.Header().Set("Content-Encoding", "gzip")
		c.Writer.Header().Set("Vary", "Accept-Encoding")
		c.Writer.Header().Del("Content-Length")

		c.Writer = &gzipWriter{
			ResponseWriter: c.Writer,
			gw:             gz,
		}

		c.Next()
	}
}

// NoCompressionMiddleware sets the X-No-Compression marker on a route's
// responses. CompressionMiddleware only sees the marker when it is set
// before CompressionMiddleware runs.
func NoCompressionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set(noCompressionHeader, "1")
		c.Next()
	}
}
