package middleware

import (
	"net/http"
	"strings"

	"github.com/renovapanel/renova/pkg/auth"
	"github.com/renovapanel/renova/pkg/contextkeys"
)

// AuthMiddleware authenticates requests with a bearer session token
type AuthMiddleware struct {
	service auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(service auth.Service) *AuthMiddleware {
	return &AuthMiddleware{service: service}
}

// Handler wraps an HTTP handler with authentication. The resolved user
// is attached to the request context.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorizedResponse(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorizedResponse(w, "invalid authorization header format")
			return
		}

		user, err := m.service.ValidateToken(r.Context(), parts[1])
		if err != nil {
			unauthorizedResponse(w, "invalid or expired token")
			return
		}

		ctx := contextkeys.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
