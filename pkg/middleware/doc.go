// Package middleware provides HTTP middleware: bearer-token
// authentication backed by the session store, and a token-bucket rate
// limiter used on the login endpoint.
package middleware
