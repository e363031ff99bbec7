package library

import (
	"github.com/JaimeStill/promptvault/pkg/openapi"
)

type librarySpec struct {
	List           *openapi.Operation
	Models         *openapi.Operation
	Categories     *openapi.Operation
	Status         *openapi.Operation
	Find           *openapi.Operation
	Create         *openapi.Operation
	Update         *openapi.Operation
	Delete         *openapi.Operation
	Favorite       *openapi.Operation
	Reload         *openapi.Operation
	MigrationPlan  *openapi.Operation
	Migrate        *openapi.Operation
	Selection      *openapi.Operation
	ToggleSelected *openapi.Operation
	ClearSelection *openapi.Operation
}

var idParam = openapi.PathParam("id", "Prompt ID")

var spec = librarySpec{
	List: &openapi.Operation{
		Summary:     "List prompts",
		Description: "Returns a filtered, sorted page of the in-memory library.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("type", "string", "Category filter; All or empty imposes none", false),
			openapi.QueryParam("model", "string", "Model filter; All or empty imposes none", false),
			openapi.QueryParam("search", "string", "Case-insensitive match on title or any tag", false),
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("sort", "string", "Sort fields: title, createdAt, model, type", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of prompts", "PromptPage"),
		},
	},
	Models: &openapi.Operation{
		Summary: "Distinct model names in first-seen order",
		Responses: map[int]*openapi.Response{
			200: {Description: "Model names", Content: stringArray()},
		},
	},
	Categories: &openapi.Operation{
		Summary: "Valid prompt categories",
		Responses: map[int]*openapi.Response{
			200: {Description: "Category values", Content: stringArray()},
		},
	},
	Status: &openapi.Operation{
		Summary: "Library sync status",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Sync status", "Status"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find a prompt by ID",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Prompt", "Prompt"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Create: &openapi.Operation{
		Summary:     "Create a prompt",
		Description: "Commits locally first. A failed remote write is reported as a warning with synced=false.",
		RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created prompt", "MutationResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Update: &openapi.Operation{
		Summary:     "Update a prompt",
		Description: "Replaces editable fields; id, createdAt, and favorite state are preserved.",
		Parameters:  []*openapi.Parameter{idParam},
		RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated prompt", "MutationResult"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Delete: &openapi.Operation{
		Summary: "Delete a prompt",
		Parameters: []*openapi.Parameter{
			idParam,
			openapi.QueryParam("confirm", "boolean", "Must be true", true),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Deletion result", "MutationResult"),
			404: openapi.ResponseRef("NotFound"),
			412: openapi.ResponseRef("PreconditionFailed"),
		},
	},
	Favorite: &openapi.Operation{
		Summary:    "Toggle the favorite flag",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Toggled prompt", "MutationResult"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Reload: &openapi.Operation{
		Summary: "Reconcile the library with the remote store",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Sync status after reconcile", "Status"),
		},
	},
	MigrationPlan: &openapi.Operation{
		Summary: "Compare cached records with the remote store",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Migration plan", "MigrationPlan"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
	Migrate: &openapi.Operation{
		Summary:     "Upload cached records missing from the remote store",
		Description: "Each record is retried independently; failures do not stop the batch.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("confirm", "integer", "Pending count reported by the plan", true),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Migration report", "MigrationReport"),
			412: openapi.ResponseRef("PreconditionFailed"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
	Selection: &openapi.Operation{
		Summary: "Current export selection",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Selection", "SelectionState"),
		},
	},
	ToggleSelected: &openapi.Operation{
		Summary:    "Toggle a prompt in the export selection",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Selection", "SelectionState"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	ClearSelection: &openapi.Operation{
		Summary: "Clear the export selection",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Selection", "SelectionState"),
		},
	},
}

func stringArray() map[string]*openapi.MediaType {
	return map[string]*openapi.MediaType{
		"application/json": {Schema: &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}},
	}
}

func schemas() map[string]*openapi.Schema {
	category := &openapi.Schema{
		Type: "string",
		Enum: []any{"Text", "Image-generation", "Video", "Audio", "Other"},
	}
	tags := &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}

	return map[string]*openapi.Schema{
		"Prompt": {
			Type:     "object",
			Required: []string{"id", "title", "content", "type", "model", "tags", "createdAt"},
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string"},
				"title":       {Type: "string"},
				"content":     {Type: "string"},
				"type":        category,
				"model":       {Type: "string"},
				"tags":        tags,
				"imageBase64": {Type: "string", Description: "data:image/<fmt>;base64,<payload>"},
				"notes":       {Type: "string"},
				"createdAt":   {Type: "integer", Format: "int64", Description: "Epoch milliseconds"},
				"isFavorite":  {Type: "boolean"},
			},
		},
		"PromptCommand": {
			Type:     "object",
			Required: []string{"title", "content", "type", "model"},
			Properties: map[string]*openapi.Schema{
				"title":       {Type: "string"},
				"content":     {Type: "string"},
				"type":        category,
				"model":       {Type: "string"},
				"tags":        tags,
				"imageBase64": {Type: "string"},
				"notes":       {Type: "string"},
				"isFavorite":  {Type: "boolean", Description: "Applied on update only"},
			},
		},
		"PromptPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Prompt")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"MutationResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"prompt":  openapi.SchemaRef("Prompt"),
				"synced":  {Type: "boolean"},
				"warning": {Type: "string"},
			},
		},
		"Status": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"records":    {Type: "integer"},
				"selected":   {Type: "integer"},
				"syncing":    {Type: "boolean"},
				"synced":     {Type: "boolean"},
				"last_sync":  {Type: "string", Format: "date-time"},
				"last_error": {Type: "string"},
			},
		},
		"MigrationPlan": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"state":   migrationState(),
				"local":   {Type: "integer"},
				"remote":  {Type: "integer"},
				"pending": {Type: "integer"},
			},
		},
		"MigrationReport": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"state":     migrationState(),
				"attempted": {Type: "integer"},
				"succeeded": {Type: "integer"},
				"failed":    {Type: "integer"},
				"errors":    {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
		"SelectionState": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"ids":   {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"count": {Type: "integer"},
			},
		},
	}
}

func migrationState() *openapi.Schema {
	return &openapi.Schema{
		Type: "string",
		Enum: []any{
			string(NothingToMigrate),
			string(AlreadyMigrated),
			string(Pending),
			string(Completed),
		},
	}
}
