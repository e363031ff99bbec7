package main

import (
	"encoding/json"
	"net/http"

	"github.com/samber/lo"

	"github.com/JaimeStill/promptvault/internal/api"
	"github.com/JaimeStill/promptvault/internal/config"
	"github.com/JaimeStill/promptvault/internal/infrastructure"
	"github.com/JaimeStill/promptvault/internal/metrics"
	"github.com/JaimeStill/promptvault/pkg/lifecycle"
	"github.com/JaimeStill/promptvault/pkg/module"
)

type Modules struct {
	API    *module.Module
	Domain *api.Domain
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, domain, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API:    apiModule,
		Domain: domain,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure, modules *Modules) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		checks := []lifecycle.ReadinessChecker{infra.Lifecycle, modules.Domain.Library}
		if !lo.EveryBy(checks, func(c lifecycle.ReadinessChecker) bool { return c.Ready() }) {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "ready",
			"library": modules.Domain.Library.Status(),
		})
	})

	router.HandleNative("GET /metrics", metrics.Handler().ServeHTTP)

	return router
}
