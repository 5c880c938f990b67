// Package observability bundles the operational concerns of the Renova
// service: structured JSON logging over log/slog, Prometheus metrics for
// HTTP traffic and billing activity, health probes backed by the database
// connection, and graceful shutdown orchestration.
package observability
