// Package clients implements the subscriber record store.
//
// A client carries two independent state axes: access status
// (ativo/vencido/cancelado) and billing status (aguardando/cobrado/pago).
// The status tokens are persisted in Portuguese and must never be renamed;
// external consumers match on them literally. This package owns plain CRUD
// over the record; the renewal lifecycle transitions live in pkg/billing.
package clients
