package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wikiracer/wikirace/internal/database"
	"github.com/wikiracer/wikirace/internal/sixdegrees"
	"github.com/wikiracer/wikirace/internal/wiki"
)

// maxRequestBody bounds request payloads. Game routes carry a handful
// of titles and counters; anything bigger is not a legitimate client.
const maxRequestBody = 64 * 1024

// Server is the HTTP API.
type Server struct {
	router   *mux.Router
	db       *database.GameDB
	wiki     *wiki.Client
	selector *sixdegrees.Selector
	resolver UserResolver
	hub      *Hub
	logger   *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHub replaces the live-feed hub.
func WithHub(hub *Hub) ServerOption {
	return func(s *Server) {
		s.hub = hub
	}
}

// NewServer creates a Server wiring the game storage, the Wikipedia
// client, the pairing selector, and the auth boundary.
func NewServer(db *database.GameDB, wikiClient *wiki.Client, selector *sixdegrees.Selector, resolver UserResolver, opts ...ServerOption) *Server {
	s := &Server{
		db:       db,
		wiki:     wikiClient,
		selector: selector,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.hub == nil {
		s.hub = NewHub(s.logger)
	}
	s.router = s.newRouter()
	return s
}

// Hub returns the live-feed hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// newRouter builds the route table.
func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/game/start", s.requireUser(s.handleGameStart)).Methods(http.MethodPost)
	api.HandleFunc("/game/update", s.requireUser(s.handleGameUpdate)).Methods(http.MethodPatch)
	api.HandleFunc("/game/finish", s.requireUser(s.handleGameFinish)).Methods(http.MethodPost)
	api.HandleFunc("/game/abandon", s.requireUser(s.handleGameAbandon)).Methods(http.MethodPost)
	api.HandleFunc("/game/live", s.hub.ServeWS).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.requireUser(s.handleStats)).Methods(http.MethodGet)
	api.HandleFunc("/user/stats", s.requireUser(s.handleStats)).Methods(http.MethodGet)
	api.HandleFunc("/race/new", s.requireUser(s.handleRaceNew)).Methods(http.MethodPost)
	api.HandleFunc("/page/{title}", s.requireUser(s.handlePage)).Methods(http.MethodGet)
	api.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	return r
}

// userHandler is a handler that runs with a resolved player ID.
type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// requireUser rejects unauthenticated requests before the handler runs.
func (s *Server) requireUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.resolver.Resolve(r)
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// writeError sends a JSON error body with the given status.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body into v, rejecting oversized and
// malformed payloads.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	return json.NewDecoder(body).Decode(v)
}
