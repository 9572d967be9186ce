package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIVersion is the version reported by /api/info
const APIVersion = "1.0.0"

const (
	infoMessage = "DevOps Learning Project API"
	demoMessage = "Hello from the backend!"

	statusHealthy = "healthy"

	// timestampLayout renders UTC instants as ISO-8601 with millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Error messages returned to clients
const (
	errRouteNotFound   = "Route not found"
	errInternal        = "Internal server error"
	errInvalidJSON     = "Invalid JSON body"
	errInvalidBody     = "Invalid request body"
	errPayloadTooLarge = "Payload too large"
)

// HealthResponse represents a liveness probe response
type HealthResponse struct {
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Environment   string  `json:"environment"`
}

// ReadyResponse represents a readiness probe response
type ReadyResponse struct {
	Ready bool `json:"ready"`
}

// InfoResponse represents service metadata
type InfoResponse struct {
	Message     string `json:"message"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// DemoResponse represents the demo endpoint payload
type DemoResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Hostname  string `json:"hostname"`
	HasAPIKey bool   `json:"hasApiKey"`
	HasFalKey bool   `json:"hasFalKey"`
}

// ErrorResponse represents an error response.
// Message is omitted entirely unless fault details may be exposed.
type ErrorResponse struct {
	Error   string  `json:"error"`
	Message *string `json:"message,omitempty"`
}

func newErrorResponse(msg string, cause error, development bool) ErrorResponse {
	resp := ErrorResponse{Error: msg}
	if development && cause != nil {
		detail := cause.Error()
		resp.Message = &detail
	}
	return resp
}

// handleHealth handles liveness probe requests
func (s *Server) handleHealth(c *gin.Context) {
	now := s.now()

	uptime := now.Sub(s.startedAt).Seconds()
	if uptime < 0 {
		uptime = 0
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:        statusHealthy,
		Timestamp:     formatTimestamp(now),
		UptimeSeconds: uptime,
		Environment:   s.environment,
	})
}

// handleReady handles readiness probe requests.
// No dependency is checked; the service is ready whenever it is serving.
func (s *Server) handleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{Ready: true})
}

// handleInfo returns static service metadata
func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Message:     infoMessage,
		Version:     APIVersion,
		Environment: s.environment,
	})
}

// handleDemo returns host details and which secrets are configured
func (s *Server) handleDemo(c *gin.Context) {
	c.JSON(http.StatusOK, DemoResponse{
		Message:   demoMessage,
		Timestamp: formatTimestamp(s.now()),
		Hostname:  s.hostname,
		HasAPIKey: s.hasAPIKey,
		HasFalKey: s.hasFalKey,
	})
}

func (s *Server) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: errRouteNotFound})
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
