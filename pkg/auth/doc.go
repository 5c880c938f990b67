// Package auth handles admin login and session tokens. Passwords are
// stored as bcrypt hashes; session tokens are opaque random strings
// with a "renova_" prefix, stored server-side as a SHA256 hash with an
// expiry. The raw token is only ever returned once, at login.
package auth
