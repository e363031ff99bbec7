package api

import (
	"fmt"

	"github.com/JaimeStill/promptvault/internal/cache"
	"github.com/JaimeStill/promptvault/internal/export"
	"github.com/JaimeStill/promptvault/internal/library"
	"github.com/JaimeStill/promptvault/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Store    prompts.Store
	Cache    *cache.Cache
	Library  *library.Library
	Exporter *export.Exporter
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	store := prompts.NewStore(runtime.Database.Connection(), runtime.Logger)

	c, err := cache.New(runtime.Storage, &runtime.Config.Cache, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}

	lib := library.New(store, c, &runtime.Config.Sync, runtime.Logger)
	exp := export.NewExporter(lib, &runtime.Config.Export, runtime.Logger)

	return &Domain{
		Store:    store,
		Cache:    c,
		Library:  lib,
		Exporter: exp,
	}, nil
}

// Start paints the library from the local cache during startup and lets
// remote reconciliation finish in the background.
func (d *Domain) Start(runtime *Runtime) {
	lc := runtime.Lifecycle
	lc.OnStartup(func() {
		d.Library.Load(lc.Context())
	})
}
