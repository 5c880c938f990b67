package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/renovapanel/renova/pkg/catalog"
	"github.com/renovapanel/renova/pkg/faults"
)

// CatalogHandlers handles product, server and plan HTTP requests
type CatalogHandlers struct {
	catalogService catalog.Service
}

// NewCatalogHandlers creates a new CatalogHandlers
func NewCatalogHandlers(catalogService catalog.Service) *CatalogHandlers {
	return &CatalogHandlers{catalogService: catalogService}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/products", h.CreateProduct).Methods("POST")
	router.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT")
	router.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")

	router.HandleFunc("/servers", h.ListServers).Methods("GET")
	router.HandleFunc("/servers", h.CreateServer).Methods("POST")
	router.HandleFunc("/servers/{id}", h.UpdateServer).Methods("PUT")
	router.HandleFunc("/servers/{id}", h.DeleteServer).Methods("DELETE")

	router.HandleFunc("/plans", h.ListPlans).Methods("GET")
	router.HandleFunc("/plans", h.CreatePlan).Methods("POST")
	router.HandleFunc("/plans/product/{productId}", h.ListPlansByProduct).Methods("GET")
	router.HandleFunc("/plans/{id}", h.UpdatePlan).Methods("PUT")
	router.HandleFunc("/plans/{id}", h.DeletePlan).Methods("DELETE")
}

// ListProducts returns all products
func (h *CatalogHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// CreateProduct creates a new product
func (h *CatalogHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct overwrites a product
func (h *CatalogHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product
func (h *CatalogHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListServers returns all servers
func (h *CatalogHandlers) ListServers(w http.ResponseWriter, r *http.Request) {
	servers, err := h.catalogService.ListServers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, servers)
}

// CreateServer creates a new server
func (h *CatalogHandlers) CreateServer(w http.ResponseWriter, r *http.Request) {
	var req catalog.Server
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	server, err := h.catalogService.CreateServer(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, server)
}

// UpdateServer overwrites a server
func (h *CatalogHandlers) UpdateServer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req catalog.Server
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	server, err := h.catalogService.UpdateServer(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, server)
}

// DeleteServer removes a server
func (h *CatalogHandlers) DeleteServer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalogService.DeleteServer(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPlans returns all plans with product names
func (h *CatalogHandlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.catalogService.ListPlans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// ListPlansByProduct returns a product's plans ordered by duration
func (h *CatalogHandlers) ListPlansByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(mux.Vars(r)["productId"], 10, 64)
	if err != nil {
		writeError(w, faults.InvalidInput("invalid product id"))
		return
	}

	plans, err := h.catalogService.ListPlansByProduct(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// CreatePlan creates a new plan
func (h *CatalogHandlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req catalog.Plan
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	plan, err := h.catalogService.CreatePlan(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// UpdatePlan overwrites a plan
func (h *CatalogHandlers) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req catalog.Plan
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	plan, err := h.catalogService.UpdatePlan(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// DeletePlan removes a plan
func (h *CatalogHandlers) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalogService.DeletePlan(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
