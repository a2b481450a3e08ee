// Package api is the thin HTTP adapter over the simulation core: template
// catalogue endpoints, a synergy preview, and the simulate endpoint. It
// owns no game state; everything comes from the loaded templates.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nicoberrocal/arenaCore/config"
	"github.com/nicoberrocal/arenaCore/storage"
)

// Server wires the router, the template loader and the optional battle
// store.
type Server struct {
	loader *config.Loader
	store  *storage.DB
	log    zerolog.Logger
	router *mux.Router
}

// NewServer builds the HTTP adapter. store may be nil to disable trace
// persistence.
func NewServer(loader *config.Loader, store *storage.DB, log zerolog.Logger) *Server {
	s := &Server{
		loader: loader,
		store:  store,
		log:    log,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/units", s.handleUnits).Methods("GET")
	api.HandleFunc("/items", s.handleItems).Methods("GET")
	api.HandleFunc("/traits", s.handleTraits).Methods("GET")
	api.HandleFunc("/synergies", s.handleSynergies).Methods("POST")
	api.HandleFunc("/simulate", s.handleSimulate).Methods("POST")
	api.HandleFunc("/battles", s.handleBattles).Methods("GET")
	api.HandleFunc("/battles/{id}", s.handleBattle).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.Use(s.logRequests)
}

// Handler returns the configured router for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("api listening")
	return srv.ListenAndServe()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
