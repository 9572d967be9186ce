// Package grpc exposes the service's probes over the standard gRPC health
// checking protocol (grpc.health.v1.Health), for orchestrators that prefer
// gRPC probes over HTTP ones.
package grpc
