// Package http provides the HTTP API of the service.
//
// The HTTP server exposes endpoints for:
//   - Liveness and readiness probes
//   - Service metadata and a demo endpoint
//   - Prometheus metrics
//
// Every request passes through a fixed middleware chain (access logging,
// request IDs, the terminal error handler, security headers, CORS and JSON
// body parsing) before it is dispatched.
package http
