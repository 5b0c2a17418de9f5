// Package web exposes the quoting session as a JSON API.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"deviseur/internal/app"
)

// MaxBodySize bounds JSON bodies and snapshot imports.
const MaxBodySize = 10 * 1024 * 1024

type Server struct {
	session *app.Session
	router  *chi.Mux
	server  *http.Server
}

func NewServer(session *app.Session) *Server {
	s := &Server{
		session: session,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Catalogue
		r.Get("/catalogue", s.handleCatalogue)
		r.Post("/catalogue/reload", s.handleReload)
		r.Get("/catalogue/facets", s.handleFacets)
		r.Get("/catalogue/tree", s.handleTree)
		r.Get("/products", s.handleProducts)

		// Quote
		r.Get("/quote", s.handleQuote)
		r.Delete("/quote", s.handleResetQuote)
		r.Post("/quote/lines", s.handleAddLine)
		r.Post("/quote/lines/{id}/quantity", s.handleChangeQuantity)
		r.Put("/quote/lines/{id}/dimensions", s.handleSetDimensions)
		r.Put("/quote/lines/{id}/comment", s.handleSetLineComment)
		r.Post("/quote/lines/{id}/toggle", s.handleToggleLine)
		r.Delete("/quote/lines/{id}", s.handleRemoveLine)
		r.Put("/quote/discount", s.handleSetDiscount)
		r.Put("/quote/comment", s.handleSetGeneralComment)
		r.Get("/quote/totals", s.handleTotals)

		// Snapshots and exports
		r.Get("/quote/snapshot", s.handleExportSnapshot)
		r.Post("/quote/snapshot", s.handleImportSnapshot)
		r.Get("/quote/pdf", s.handleDownloadPDF)
		r.Get("/quote/xlsx", s.handleDownloadXLSX)

		// Saved quotes
		r.Get("/quotes", s.handleListQuotes)
		r.Post("/quotes", s.handleSaveQuote)
		r.Post("/quotes/{id}/open", s.handleOpenQuote)
	})
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.WithField("addr", addr).Info("starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON. Encoding errors are only logged since the
// headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("json encode error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}
