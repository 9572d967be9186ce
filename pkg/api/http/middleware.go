package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	metrics "github.com/aescanero/devops-api/pkg/adapters/metrics/prometheus"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// HeaderRequestID carries the request identifier in both directions.
	HeaderRequestID = "X-Request-ID"

	// BodyKey is the context key under which the decoded JSON request body is stored.
	BodyKey = "body"

	requestIDKey = "request_id"
)

// securityHeaderValues mirror the defaults of the helmet middleware.
var securityHeaderValues = map[string]string{
	"Content-Security-Policy": "default-src 'self';base-uri 'self';font-src 'self' https: data:;" +
		"form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';" +
		"script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';" +
		"upgrade-insecure-requests",
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
	"Origin-Agent-Cluster":              "?1",
	"Referrer-Policy":                   "no-referrer",
	"Strict-Transport-Security":         "max-age=31536000; includeSubDomains",
	"X-Content-Type-Options":            "nosniff",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Frame-Options":                   "SAMEORIGIN",
	"X-Permitted-Cross-Domain-Policies": "none",
	"X-XSS-Protection":                  "0",
}

// normalizePath routes paths case-insensitively and ignores a single
// trailing slash, so /HEALTH and /health/ reach the /health handler.
func normalizePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.ToLower(r.URL.Path)
		if len(p) > 1 {
			p = strings.TrimSuffix(p, "/")
		}
		if p == r.URL.Path {
			next.ServeHTTP(w, r)
			return
		}

		r2 := new(http.Request)
		*r2 = *r
		r2.URL = new(url.URL)
		*r2.URL = *r.URL
		r2.URL.Path = p
		r2.URL.RawPath = ""
		next.ServeHTTP(w, r2)
	})
}

// requestLogger is a middleware for request logging.
// It runs outermost so short-circuited requests are logged too.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)))
	}
}

// requestID reuses the caller's request ID or mints a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)

		c.Next()
	}
}

// requestMetrics records count and latency per matched route
func requestMetrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.IncInFlight()
		defer collector.DecInFlight()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// errorHandler is the terminal fault handler. Panics and errors attached with
// c.Error are logged and answered with 500; the fault detail is only echoed
// to the client in development.
func errorHandler(logger *zap.Logger, development bool, collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			// net/http uses this sentinel to abort a response silently
			if r == http.ErrAbortHandler {
				panic(r)
			}

			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}

			logger.Error("panic recovered",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.Stack("stack"))

			writeFault(c, err, development, collector)
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)))

		if c.Writer.Written() {
			return
		}
		writeFault(c, err, development, collector)
	}
}

func writeFault(c *gin.Context, err error, development bool, collector *metrics.Collector) {
	if collector != nil {
		collector.IncFaults()
	}

	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, newErrorResponse(errInternal, err, development))
}

// securityHeaders sets the hardening headers on every response
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range securityHeaderValues {
			h.Set(k, v)
		}

		c.Next()
	}
}

// corsMiddleware allows every origin. Not suitable for production.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		if reqHeaders := c.GetHeader("Access-Control-Request-Headers"); reqHeaders != "" {
			c.Header("Access-Control-Allow-Headers", reqHeaders)
			c.Writer.Header().Add("Vary", "Access-Control-Request-Headers")
		}
		c.Header("Content-Length", "0")
		c.AbortWithStatus(http.StatusNoContent)
	}
}

// jsonBody decodes application/json request bodies before dispatch.
// Only objects and arrays are accepted at the top level.
func jsonBody(maxBytes int64, development bool, collector *metrics.Collector) gin.HandlerFunc {
	reject := func(c *gin.Context, status int, reason, msg string, err error) {
		if collector != nil {
			collector.IncBodyRejected(reason)
		}
		c.AbortWithStatusJSON(status, newErrorResponse(msg, err, development))
	}

	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody || c.ContentType() != binding.MIMEJSON {
			c.Next()
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				reject(c, http.StatusRequestEntityTooLarge, "too_large", errPayloadTooLarge, err)
				return
			}
			reject(c, http.StatusBadRequest, "unreadable", errInvalidBody, err)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if len(bytes.TrimSpace(body)) == 0 {
			c.Next()
			return
		}

		var parsed any
		if err := json.Unmarshal(body, &parsed); err != nil {
			reject(c, http.StatusBadRequest, "malformed", errInvalidJSON, err)
			return
		}
		switch parsed.(type) {
		case map[string]any, []any:
		default:
			reject(c, http.StatusBadRequest, "malformed", errInvalidJSON,
				errors.New("top-level JSON value must be an object or array"))
			return
		}

		// Cached for handlers binding with c.ShouldBindBodyWith.
		c.Set(gin.BodyBytesKey, body)
		c.Set(BodyKey, parsed)

		c.Next()
	}
}
