// Package reports serves the read side: dashboard aggregation over the
// client and sales tables, and the sales ledger listing. Reads go to a
// replica when one is configured and are snapshot-consistent only; they
// take no locks against concurrent writes. Dashboard stats can be
// fronted by a short-TTL Redis cache.
package reports
