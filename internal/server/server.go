// Package server exposes the two read-only proxy routes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// FetchFunc produces the JSON payload a route relays.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// ExceptionPrefix starts every relayed error body.
const ExceptionPrefix = "Exception: "

// Options tune how the routes answer.
type Options struct {
	// StrictErrors answers failures with 502 and {"error": ...}.
	StrictErrors bool
	// AllowOrigin sets Access-Control-Allow-Origin when non-empty.
	AllowOrigin string
}

// Server routes /getTodos and /testAPI to their fetchers.
type Server struct {
	router *mux.Router
	rows   FetchFunc
	tables FetchFunc
	opt    Options
	log    *zap.Logger
}

// New wires the routes. rows feeds /getTodos, tables feeds /testAPI.
func New(rows, tables FetchFunc, opt Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		router: mux.NewRouter(),
		rows:   rows,
		tables: tables,
		opt:    opt,
		log:    log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	if s.opt.AllowOrigin != "" {
		s.router.Use(s.cors)
	}
	s.router.HandleFunc("/getTodos", s.relay("getTodos", s.rows)).Methods(http.MethodGet)
	s.router.HandleFunc("/testAPI", s.relay("testAPI", s.tables)).Methods(http.MethodGet)
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// relay writes the payload on success and the error text otherwise.
func (s *Server) relay(route string, fetch FetchFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := fetch(r.Context())
		if err != nil {
			s.log.Warn("upstream call failed", zap.String("route", route), zap.Error(err))
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if s.opt.StrictErrors {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ExceptionPrefix + err.Error()))
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.opt.AllowOrigin)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("stopped")
	return nil
}
