// Package faults defines the error taxonomy shared by all Renova services.
//
// Every failure that crosses a service boundary is classified into one of
// four kinds: NotFound, InvalidInput, StorageFailure or Timeout. Callers
// branch on the kind with KindOf or the Is* helpers; the HTTP layer maps
// kinds to status codes. Errors always wrap their cause so errors.Is and
// errors.As keep working through the classification.
package faults
