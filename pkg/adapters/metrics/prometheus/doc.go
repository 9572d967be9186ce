// Package prometheus records HTTP request metrics and serves them in the
// Prometheus exposition format.
package prometheus
