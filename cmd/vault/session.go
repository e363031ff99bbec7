package main

import (
	"context"
	"fmt"

	"github.com/JaimeStill/promptvault/internal/api"
	"github.com/JaimeStill/promptvault/internal/config"
	"github.com/JaimeStill/promptvault/internal/infrastructure"
)

// session is an opened library with its infrastructure started.
type session struct {
	cfg    *config.Config
	infra  *infrastructure.Infrastructure
	domain *api.Domain
}

// open loads configuration, starts infrastructure, and builds the domain
// without reconciling. Callers decide whether to wait on Library.Load.
func open() (*session, error) {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := infra.Start(); err != nil {
		return nil, err
	}
	infra.Lifecycle.WaitForStartup()

	domain, err := api.NewDomain(api.NewRuntime(cfg, infra))
	if err != nil {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		return nil, err
	}

	return &session{cfg: cfg, infra: infra, domain: domain}, nil
}

// load paints the library from cache and waits for remote reconciliation.
// A reconcile failure is reported as a warning; the cached records remain.
func (s *session) load(ctx context.Context) {
	if err := <-s.domain.Library.Load(ctx); err != nil {
		warn("remote sync failed, showing cached records: %v", err)
	}
}

func (s *session) close() {
	if err := s.infra.Lifecycle.Shutdown(s.cfg.ShutdownTimeoutDuration()); err != nil {
		warn("shutdown: %v", err)
	}
}
