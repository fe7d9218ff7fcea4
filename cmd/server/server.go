package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/infrastructure"
)

// Server owns the infrastructure, the mounted modules, and the HTTP listener.
type Server struct {
	infra           *infrastructure.Infrastructure
	modules         *Modules
	http            *httpServer
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules init failed: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"inspector initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"agent", cfg.Agent.Provider,
		"workers", cfg.Pipeline.Workers,
	)

	return &Server{
		infra:           infra,
		modules:         modules,
		http:            newHTTPServer(&cfg.Server, router, infra.Logger),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}, nil
}

// Run starts every subsystem and blocks until ctx is cancelled, then shuts down
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.start(); err != nil {
		return err
	}

	<-ctx.Done()

	s.infra.Logger.Info("initiating shutdown", "timeout", s.shutdownTimeout)
	if err := s.infra.Lifecycle.Shutdown(s.shutdownTimeout); err != nil {
		return err
	}
	s.infra.Logger.Info("inspector stopped")
	return nil
}

func (s *Server) start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
			s.infra.Logger.Error("startup incomplete", "error", err)
			return
		}
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}
