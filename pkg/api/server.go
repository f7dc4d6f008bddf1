package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/cookiemaze/pkg/api/handlers"
	"github.com/cbodonnell/cookiemaze/pkg/api/middleware"
	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port  int
	TLS   *TLSConfig
	Games handlers.Games
	// PublicURL is the scheme and host that share links are built on
	PublicURL string
	// CreateRatePerMinute limits game creation per client IP
	CreateRatePerMinute int
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

func NewRouter(opts NewAPIServerOptions) http.Handler {
	limiter := middleware.NewRateLimiter(opts.CreateRatePerMinute)

	r := mux.NewRouter()
	r.Use(middleware.CORS)
	r.Handle("/maze/create", limiter.Middleware(handlers.HandleCreateGame(opts.Games))).
		Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/maze/game-config/{gameId}", handlers.HandleGameConfig(opts.Games)).
		Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/maze/qr/{gameId}", handlers.HandleQRCode(opts.Games, opts.PublicURL)).
		Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/healthz", handlers.HandleHealth(opts.Games)).
		Methods(http.MethodGet)
	return r
}

// Start starts the APIServer and blocks until it is stopped.
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return fmt.Errorf("api server error: %v", err)
	}
	return nil
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
