package api

import (
	"net/http"

	"github.com/JaimeStill/promptvault/internal/config"
	"github.com/JaimeStill/promptvault/internal/export"
	"github.com/JaimeStill/promptvault/internal/importer"
	"github.com/JaimeStill/promptvault/internal/library"
	"github.com/JaimeStill/promptvault/pkg/openapi"
	"github.com/JaimeStill/promptvault/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) error {
	groups := []routes.Group{
		library.NewHandler(domain.Library, runtime.Logger, runtime.Pagination).Routes(),
		export.NewHandler(domain.Exporter, runtime.Logger).Routes(),
		importer.NewHandler(runtime.Logger, runtime.Config.API.MaxUploadSizeBytes()).Routes(),
		newCacheHandler(domain.Cache, runtime.Storage, runtime.Config.Cache.Key, runtime.Logger).routes(),
	}
	routes.Register(mux, groups...)

	specBytes, err := openapi.MarshalJSON(BuildSpec(runtime.Config, groups...))
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}

// BuildSpec describes the API served under the configured base path.
func BuildSpec(cfg *config.Config, groups ...routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	routes.Describe(spec, groups...)
	return spec
}
