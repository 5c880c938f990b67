package api

import (
	"encoding/json"
	"net/http"

	"github.com/renovapanel/renova/pkg/faults"
)

// errorResponse is the wire shape of every failure
type errorResponse struct {
	Error string      `json:"error"`
	Kind  faults.Kind `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a failure kind to its HTTP status. Unclassified
// errors surface as storage failures.
func writeError(w http.ResponseWriter, err error) {
	kind := faults.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case faults.KindNotFound:
		status = http.StatusNotFound
	case faults.KindInvalidInput:
		status = http.StatusBadRequest
	case faults.KindUnauthorized:
		status = http.StatusUnauthorized
	case faults.KindTimeout:
		status = http.StatusGatewayTimeout
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}
