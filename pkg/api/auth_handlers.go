package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/renovapanel/renova/pkg/auth"
	"github.com/renovapanel/renova/pkg/contextkeys"
	"github.com/renovapanel/renova/pkg/faults"
)

// AuthHandlers handles login and logout requests
type AuthHandlers struct {
	authService auth.Service
}

// NewAuthHandlers creates a new AuthHandlers
func NewAuthHandlers(authService auth.Service) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// RegisterRoutes registers the routes behind authentication. Login is
// mounted separately by the server since it must stay public.
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	router.HandleFunc("/auth/me", h.Me).Methods("GET")
}

// Me returns the account behind the presented session token
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())
	if user == nil {
		writeError(w, faults.Unauthorized("no active session"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Login verifies credentials and returns a session token
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, faults.InvalidInput("invalid request body"))
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the session presented in the Authorization header
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		writeError(w, faults.Unauthorized("missing bearer token"))
		return
	}

	if err := h.authService.Logout(r.Context(), parts[1]); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
