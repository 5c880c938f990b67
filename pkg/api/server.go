package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/renovapanel/renova/pkg/auth"
	"github.com/renovapanel/renova/pkg/billing"
	"github.com/renovapanel/renova/pkg/catalog"
	"github.com/renovapanel/renova/pkg/clients"
	"github.com/renovapanel/renova/pkg/contextkeys"
	"github.com/renovapanel/renova/pkg/middleware"
	"github.com/renovapanel/renova/pkg/observability"
	"github.com/renovapanel/renova/pkg/reports"
)

// Config carries the services the HTTP surface is built from
type Config struct {
	ClientService  clients.Service
	BillingService billing.Service
	CatalogService catalog.Service
	ReportService  reports.Service
	AuthService    auth.Service

	Logger  *observability.Logger
	Metrics *observability.Metrics

	// LoginLimiter throttles credential attempts. Nil disables limiting.
	LoginLimiter *middleware.RateLimiter
}

// Server is the HTTP API server
type Server struct {
	router *mux.Router
	logger *observability.Logger
}

// NewServer assembles the router: /api/auth/login is public (and rate
// limited), everything else under /api requires a session token.
func NewServer(cfg Config) *Server {
	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.HTTPMiddleware)
	}

	authHandlers := NewAuthHandlers(cfg.AuthService)

	public := router.PathPrefix("/api").Subrouter()
	var login http.Handler = http.HandlerFunc(authHandlers.Login)
	if cfg.LoginLimiter != nil {
		login = cfg.LoginLimiter.Handler(login)
	}
	public.Handle("/auth/login", login).Methods("POST")

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.NewAuthMiddleware(cfg.AuthService).Handler)
	if cfg.Logger != nil {
		protected.Use(accessLog(cfg.Logger))
	}

	authHandlers.RegisterRoutes(protected)
	NewClientHandlers(cfg.ClientService, cfg.BillingService).RegisterRoutes(protected)
	NewCatalogHandlers(cfg.CatalogService).RegisterRoutes(protected)
	NewReportHandlers(cfg.ReportService).RegisterRoutes(protected)

	return &Server{router: router, logger: cfg.Logger}
}

// accessLog writes one line per authenticated request, annotated with
// the request ID and the acting user
func accessLog(logger *observability.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			fields := map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			}
			if id := contextkeys.RequestIDFrom(r.Context()); id != "" {
				fields["request_id"] = id
			}
			if user := contextkeys.UserFrom(r.Context()); user != nil {
				fields["user_id"] = user.ID
			}
			logger.WithFields(fields).Debug("request served")
		})
	}
}

// Router returns the assembled handler
func (s *Server) Router() http.Handler {
	return s.router
}
