// Package billing implements the renewal lifecycle engine: reminder
// message generation with its billing-state side effect, and payment
// confirmation with the 30-day-per-month expiry extension and the
// sales ledger write. Both operations run in a single transaction
// holding a row lock on the client.
package billing
