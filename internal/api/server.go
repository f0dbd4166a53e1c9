package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rover-control/roverlink/internal/auth"
	"github.com/rover-control/roverlink/internal/command"
	"github.com/rover-control/roverlink/internal/intent"
	"github.com/rover-control/roverlink/internal/mode"
	"github.com/rover-control/roverlink/internal/script"
	"github.com/rover-control/roverlink/internal/transport"
)

// TelemetryPort is the minimal interface the server needs from the hub.
type TelemetryPort interface {
	Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server

	resolver  command.ResolverPort
	policy    mode.Policy
	contract  *script.Contract
	telemetry TelemetryPort
	deliverer transport.Deliverer // optional
	oracle    intent.Oracle       // optional

	authMiddleware *auth.Middleware // optional
	startTime      time.Time

	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
}

// NewServer creates an API server over the resolver and policy table.
func NewServer(resolver command.ResolverPort, policy mode.Policy, telemetry TelemetryPort, readTimeout, writeTimeout, idleTimeout time.Duration) *Server {
	return &Server{
		resolver:     resolver,
		policy:       policy,
		telemetry:    telemetry,
		startTime:    time.Now(),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		idleTimeout:  idleTimeout,
	}
}

// SetContract exposes the script contract's capability set on the schema
// endpoint.
func (s *Server) SetContract(c *script.Contract) {
	s.contract = c
}

// SetAuthMiddleware enables bearer-token auth on protected routes.
func (s *Server) SetAuthMiddleware(m *auth.Middleware) {
	s.authMiddleware = m
}

// SetDeliverer attaches the transport collaborator. Resolved envelopes are
// handed to it after serialization.
func (s *Server) SetDeliverer(d transport.Deliverer) {
	s.deliverer = d
}

// SetOracle attaches the intent oracle, enabling POST /commands/interpret.
func (s *Server) SetOracle(o intent.Oracle) {
	s.oracle = o
}

// Router builds the route table. Exposed for httptest use.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.registerRoutes(r)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// protect wraps handler with auth and scope checks when auth is enabled.
func (s *Server) protect(handler http.HandlerFunc, scopes ...string) http.HandlerFunc {
	if s.authMiddleware == nil {
		return handler
	}
	return s.authMiddleware.RequireAuth(s.authMiddleware.RequireScope(scopes...)(handler))
}

// registerRoutes registers all /api/v1 endpoints.
func (s *Server) registerRoutes(r *mux.Router) {
	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Health stays open; everything else goes through protect.
	v1.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1.HandleFunc("/commands/resolve", s.protect(s.handleResolve, auth.ScopeCommand)).Methods(http.MethodPost)
	v1.HandleFunc("/commands/interpret", s.protect(s.handleInterpret, auth.ScopeCommand)).Methods(http.MethodPost)

	v1.HandleFunc("/schema", s.protect(s.handleSchema, auth.ScopeRead)).Methods(http.MethodGet)
	v1.HandleFunc("/mode", s.protect(s.handleMode, auth.ScopeRead)).Methods(http.MethodGet)

	v1.HandleFunc("/telemetry", s.protect(s.handleTelemetry, auth.ScopeTelemetry)).Methods(http.MethodGet)
}
