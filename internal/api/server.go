// Package api exposes the gateway over HTTP: weather queries, alert intake,
// and cache administration, all behind bearer-token auth.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wxgate/wxgate/internal/config"
	"github.com/wxgate/wxgate/internal/gateway"
)

type Server struct {
	gw  *gateway.Gateway
	cfg *config.Config
}

func NewServer(cfg *config.Config, gw *gateway.Gateway) *Server {
	return &Server{gw: gw, cfg: cfg}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth)

		r.Route("/weather", func(r chi.Router) {
			r.Use(s.requireRole("read"))
			r.Post("/all", s.handleAll)
			r.Post("/forecast", s.handleForecast)
			r.Post("/hourly", s.handleHourly)
			r.Post("/hwo", s.handleHWO)
			r.Post("/spotter", s.handleSpotter)
		})

		r.With(s.requireRole("alert")).Post("/alert", s.handleAlert)

		r.Route("/admin/cache", func(r chi.Router) {
			r.Use(s.requireRole("admin"))
			r.Get("/", s.handleCacheDump)
			r.Delete("/", s.handleCacheClear)
		})
	})

	return r
}

func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
