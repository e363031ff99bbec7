package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/promptvault/internal/cache"
	"github.com/JaimeStill/promptvault/pkg/handlers"
	"github.com/JaimeStill/promptvault/pkg/openapi"
	"github.com/JaimeStill/promptvault/pkg/routes"
	"github.com/JaimeStill/promptvault/pkg/storage"
)

// cacheHandler exposes the raw local cache entry for inspection and reset.
type cacheHandler struct {
	cache  *cache.Cache
	store  storage.System
	key    string
	logger *slog.Logger
}

func newCacheHandler(c *cache.Cache, store storage.System, key string, logger *slog.Logger) *cacheHandler {
	return &cacheHandler{
		cache:  c,
		store:  store,
		key:    key,
		logger: logger.With("handler", "cache"),
	}
}

func (h *cacheHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/cache",
		Tags:   []string{"Cache"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.download,
				OpenAPI: &openapi.Operation{
					Summary: "Download the raw local cache entry",
					Responses: map[int]*openapi.Response{
						200: {Description: "Cached record array as JSON"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "DELETE", Pattern: "", Handler: h.clear,
				OpenAPI: &openapi.Operation{
					Summary:   "Remove the local cache entry",
					Responses: map[int]*openapi.Response{204: {Description: "Cache cleared"}},
				},
			},
		},
	}
}

func (h *cacheHandler) download(w http.ResponseWriter, r *http.Request) {
	body, err := h.store.Download(r.Context(), h.key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.key+".json"))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil && !errors.Is(err, r.Context().Err()) {
		h.logger.Warn("cache download interrupted", "error", err)
	}
}

func (h *cacheHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
