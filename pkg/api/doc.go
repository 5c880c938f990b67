// Package api exposes the HTTP surface of the panel: admin auth,
// client records, the product/plan/server catalog, reminder and
// payment operations, and the dashboard and sales reports. Everything
// under /api except login requires a bearer session token.
package api
