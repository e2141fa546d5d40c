// Package api provides the HTTP REST API server for wondash.
//
// It exposes the product data endpoint the dashboard frontend polls,
// plus cache administration, news, recommendations, and WebSocket
// streaming of refreshed payloads.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/daehw/wondash/internal/cache"
	"github.com/daehw/wondash/internal/config"
	"github.com/daehw/wondash/internal/dashboard"
	"github.com/daehw/wondash/internal/news"
	"github.com/daehw/wondash/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	svc    *dashboard.Service
	store  *cache.Store
	news   *news.Fetcher
	wsHub  *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
// Freshly composed payloads are pushed to WebSocket subscribers.
func NewServer(cfg *config.Config, store *cache.Store, svc *dashboard.Service, newsFetcher *news.Fetcher) *Server {
	srv := &Server{
		cfg:   cfg,
		svc:   svc,
		store: store,
		news:  newsFetcher,
		wsHub: NewWSHub(),
	}

	svc.SetBroadcast(func(productID string, payload *models.ProductPayload) {
		srv.wsHub.Broadcast(WSMessage{
			Type:    "product_update",
			Product: productID,
			Data:    payload,
		})
	})

	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	// The frontend polls this endpoint; the payload shape is part of its
	// contract, so it is served raw with no envelope.
	r.Get("/api/data/{productID}", s.handleProductData)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/cache", s.handleCacheStatus)
		r.Delete("/cache", s.handleCacheClear)
		r.Post("/refresh", s.handleRefresh)

		r.Get("/news", s.handleNews)
		r.Get("/recommend/{productID}", s.handleRecommend)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Response types
// ============================================================

// APIResponse is the standard JSON envelope for /api/v1 routes.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"products": models.ProductIDs,
			"cached":   s.store.Len(),
		},
	})
}

// handleProductData serves GET /api/data/{productID}?force=true.
func (s *Server) handleProductData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	force := r.URL.Query().Get("force") == "true"

	// Unknown ids fall through to the same 500 shape as resolution
	// failures; the frontend only distinguishes ok from not-ok here.
	payload, err := s.svc.Product(r.Context(), id, force)
	if err != nil {
		log.Printf("product %s: %v", id, err)
		writeRawError(w, http.StatusInternalServerError, "Failed to fetch data")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.store.Status(),
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"cleared": true},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RefreshAll(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"refreshed": models.ProductIDs},
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := 30
	items, err := s.news.Headlines(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	rec, err := s.svc.Recommend(r.Context(), id)
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownProduct) {
			writeError(w, http.StatusNotFound, "unknown product")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rec})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeRawError writes the unenveloped error shape used by /api/data.
func writeRawError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
