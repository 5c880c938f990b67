package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/renovapanel/renova/pkg/billing"
	"github.com/renovapanel/renova/pkg/clients"
	"github.com/renovapanel/renova/pkg/faults"
)

// ClientHandlers handles client record and renewal HTTP requests
type ClientHandlers struct {
	clientService  clients.Service
	billingService billing.Service
}

// NewClientHandlers creates a new ClientHandlers
func NewClientHandlers(clientService clients.Service, billingService billing.Service) *ClientHandlers {
	return &ClientHandlers{
		clientService:  clientService,
		billingService: billingService,
	}
}

// RegisterRoutes registers client routes
func (h *ClientHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/clients", h.ListClients).Methods("GET")
	router.HandleFunc("/clients", h.CreateClient).Methods("POST")
	router.HandleFunc("/clients/{id}", h.GetClient).Methods("GET")
	router.HandleFunc("/clients/{id}", h.UpdateClient).Methods("PUT")
	router.HandleFunc("/clients/{id}", h.DeleteClient).Methods("DELETE")
	router.HandleFunc("/clients/{id}/whatsapp", h.GenerateReminder).Methods("GET")
	router.HandleFunc("/clients/{id}/confirm-payment", h.ConfirmPayment).Methods("POST")
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, faults.InvalidInput("invalid id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

// ListClients returns all clients ordered by expiration date
func (h *ClientHandlers) ListClients(w http.ResponseWriter, r *http.Request) {
	result, err := h.clientService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateClient creates a new client record
func (h *ClientHandlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clients.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// GetClient returns a single client record
func (h *ClientHandlers) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	client, err := h.clientService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// UpdateClient overwrites a client record
func (h *ClientHandlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req clients.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	client, err := h.clientService.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// DeleteClient removes a client record. Its sales stay in the ledger
// with the client reference nulled.
func (h *ClientHandlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.clientService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateReminder renders the WhatsApp reminder text. Fetching the
// message marks the client as billed and schedules the next reminder;
// there is no preview without the side effect.
func (h *ClientHandlers) GenerateReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.billingService.GenerateReminder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ConfirmPayment records a received payment and extends the expiry
func (h *ClientHandlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req billing.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	result, err := h.billingService.ConfirmPayment(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
