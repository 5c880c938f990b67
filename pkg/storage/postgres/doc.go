// Package postgres manages the service's PostgreSQL connections and schema.
//
// The ConnectionManager owns a primary pool for writes and optional
// read-replica pools used by the dashboard's snapshot queries. It is
// created once at startup, injected into every service, and closed on
// shutdown; no package-level state.
//
// Migrations are embedded Go values applied in order and tracked in a
// schema_migrations table, so a fresh database bootstraps itself on boot.
package postgres
