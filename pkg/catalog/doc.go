// Package catalog implements the reference-data stores: products,
// servers and the priced plans consulted by the reminder engine.
//
// Plans are unique per (product, price tier, duration); the schema
// enforces it and a violation surfaces as an invalid-input fault.
package catalog
