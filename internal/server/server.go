// Package server wires the execution gateway together: provider adapters in
// priority order, the fallback orchestrator, HTTP routes, and the optional
// NATS endpoint. This is the composition root — every dependency is
// constructed here and passed down explicitly.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"

	"github.com/sakif/coderunner/internal/config"
	"github.com/sakif/coderunner/internal/gateway"
	"github.com/sakif/coderunner/internal/handler"
	"github.com/sakif/coderunner/internal/middleware"
	"github.com/sakif/coderunner/internal/natsrpc"
	"github.com/sakif/coderunner/internal/provider"
	"github.com/sakif/coderunner/internal/provider/codexapi"
	"github.com/sakif/coderunner/internal/provider/glot"
	"github.com/sakif/coderunner/internal/provider/jdoodle"
	"github.com/sakif/coderunner/internal/provider/judge0"
)

// Server owns the router, the gateway, and the optional NATS connection.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	gw     *gateway.Gateway
	nc     *nats.Conn
}

// New creates a Server from the loaded configuration. The provider chain is
// assembled in cfg.ProviderOrder; an unknown provider name is a
// configuration error rather than something to silently skip.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	providers, err := buildProviders(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building providers: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		gw:     gateway.New(providers, cfg.ProviderTimeout, logger),
	}

	s.setupRoutes()
	return s, nil
}

// buildProviders instantiates the adapters named in the configured priority
// order.
func buildProviders(cfg config.Config, logger *slog.Logger) ([]provider.Provider, error) {
	providers := make([]provider.Provider, 0, len(cfg.ProviderOrder))
	for _, name := range cfg.ProviderOrder {
		switch name {
		case judge0.Name:
			pcfg := judge0.DefaultConfig()
			pcfg.APIKey = cfg.Judge0APIKey
			providers = append(providers, judge0.New(pcfg, logger))
		case codexapi.Name:
			providers = append(providers, codexapi.New(codexapi.DefaultConfig(), logger))
		case jdoodle.Name:
			pcfg := jdoodle.DefaultConfig()
			pcfg.ClientID = cfg.JDoodleClientID
			pcfg.ClientSecret = cfg.JDoodleClientSecret
			providers = append(providers, jdoodle.New(pcfg, logger))
		case glot.Name:
			pcfg := glot.DefaultConfig()
			pcfg.Token = cfg.GlotToken
			providers = append(providers, glot.New(pcfg, logger))
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return providers, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	executeHandler := handler.NewExecuteHandler(s.gw, s.logger)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/execute-code", executeHandler.HandleExecuteCode)
	})
}

// Start runs the HTTP server (and the NATS endpoint when configured) until a
// shutdown signal arrives, then drains both gracefully.
func (s *Server) Start() error {
	if s.config.NATSURL != "" {
		nc, err := nats.Connect(s.config.NATSURL, nats.Name("coderunner-gateway"))
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		s.nc = nc
		defer nc.Close()

		if _, err := natsrpc.Subscribe(nc, s.gw, s.logger); err != nil {
			return fmt.Errorf("subscribing on nats: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // must outlive the full fallback chain
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.Any("providers", s.config.ProviderOrder),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if s.nc != nil {
			if err := s.nc.Drain(); err != nil {
				s.logger.Warn("nats drain failed", slog.String("error", err.Error()))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
