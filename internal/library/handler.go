package library

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/promptvault/internal/prompts"
	"github.com/JaimeStill/promptvault/pkg/handlers"
	"github.com/JaimeStill/promptvault/pkg/pagination"
	"github.com/JaimeStill/promptvault/pkg/routes"
)

// Handler provides HTTP endpoints for the prompt library and export selection.
type Handler struct {
	lib        *Library
	logger     *slog.Logger
	pagination pagination.Config
}

// SelectionState is the response body for selection endpoints.
type SelectionState struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// NewHandler creates a Handler over lib.
func NewHandler(lib *Library, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		lib:        lib,
		logger:     logger.With("handler", "library"),
		pagination: pagination,
	}
}

// Routes returns the prompt and selection route groups.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Schemas: schemas(),
		Children: []routes.Group{
			{
				Prefix:      "/prompts",
				Tags:        []string{"Prompts"},
				Description: "Prompt library records, sync status, and cache migration",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.List},
					{Method: "GET", Pattern: "/models", Handler: h.Models, OpenAPI: spec.Models},
					{Method: "GET", Pattern: "/categories", Handler: h.Categories, OpenAPI: spec.Categories},
					{Method: "GET", Pattern: "/status", Handler: h.Status, OpenAPI: spec.Status},
					{Method: "GET", Pattern: "/migration", Handler: h.MigrationPlan, OpenAPI: spec.MigrationPlan},
					{Method: "POST", Pattern: "/migration", Handler: h.Migrate, OpenAPI: spec.Migrate},
					{Method: "POST", Pattern: "/reload", Handler: h.Reload, OpenAPI: spec.Reload},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.Find},
					{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: spec.Create},
					{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: spec.Update},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: spec.Delete},
					{Method: "POST", Pattern: "/{id}/favorite", Handler: h.Favorite, OpenAPI: spec.Favorite},
				},
			},
			{
				Prefix:      "/selection",
				Tags:        []string{"Selection"},
				Description: "Records chosen for export",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.Selection, OpenAPI: spec.Selection},
					{Method: "POST", Pattern: "/{id}", Handler: h.ToggleSelection, OpenAPI: spec.ToggleSelected},
					{Method: "DELETE", Pattern: "", Handler: h.ClearSelection, OpenAPI: spec.ClearSelection},
				},
			},
		},
	}
}

// List returns a filtered, sorted page of prompts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filter := prompts.FilterFromQuery(r.URL.Query())

	handlers.RespondJSON(w, http.StatusOK, h.lib.List(filter, page))
}

func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.lib.Models())
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, prompts.Categories())
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.lib.Status())
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	p, err := h.lib.Find(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Create processes a JSON body to create a prompt. The response reports
// whether the remote store accepted the record.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd prompts.CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.lib.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var cmd prompts.UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.lib.Update(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete removes a prompt. The request must carry confirm=true.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	result, err := h.lib.Delete(r.Context(), r.PathValue("id"), confirmed)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	result, err := h.lib.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Reload re-runs startup reconciliation and waits for the remote result.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := <-h.lib.Load(r.Context()); err != nil {
		h.logger.Warn("reload did not reach remote store", "error", err)
	}

	handlers.RespondJSON(w, http.StatusOK, h.lib.Status())
}

func (h *Handler) MigrationPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.lib.PlanMigration(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, plan)
}

// Migrate pushes orphaned cached records to the remote store. The confirm
// query parameter must equal the pending count reported by the plan.
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	confirm, err := strconv.Atoi(r.URL.Query().Get("confirm"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusPreconditionFailed, ErrConfirmationRequired)
		return
	}

	report, err := h.lib.Migrate(r.Context(), confirm)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) Selection(w http.ResponseWriter, r *http.Request) {
	h.respondSelection(w)
}

func (h *Handler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	if _, err := h.lib.ToggleSelection(r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respondSelection(w)
}

func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.lib.ClearSelection()
	h.respondSelection(w)
}

func (h *Handler) respondSelection(w http.ResponseWriter) {
	ids := h.lib.SelectedIDs()
	handlers.RespondJSON(w, http.StatusOK, SelectionState{IDs: ids, Count: len(ids)})
}
