package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/promptvault/pkg/openapi"
	"github.com/JaimeStill/promptvault/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func promptGroups() routes.Group {
	return routes.Group{
		Schemas: map[string]*openapi.Schema{"Prompt": {Type: "object"}},
		Children: []routes.Group{
			{
				Prefix: "/prompts",
				Tags:   []string{"Prompts"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: ok, OpenAPI: &openapi.Operation{Summary: "list"}},
					{Method: "GET", Pattern: "/{id}", Handler: ok, OpenAPI: &openapi.Operation{Summary: "find"}},
					{Method: "DELETE", Pattern: "/{id}", Handler: ok},
				},
				Children: []routes.Group{
					{
						Prefix: "/{id}/favorite",
						Routes: []routes.Route{
							{Method: "POST", Pattern: "", Handler: ok, OpenAPI: &openapi.Operation{Summary: "favorite", Tags: []string{"Favorites"}}},
						},
					},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, promptGroups())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list", "GET", "/prompts", http.StatusOK},
		{"find", "GET", "/prompts/abc", http.StatusOK},
		{"delete", "DELETE", "/prompts/abc", http.StatusOK},
		{"nested favorite", "POST", "/prompts/abc/favorite", http.StatusOK},
		{"wrong method", "PUT", "/prompts/abc", http.StatusMethodNotAllowed},
		{"unknown", "GET", "/selection", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	spec := openapi.NewSpec("Vault", "0.1.0")
	routes.Describe(spec, promptGroups())

	if _, ok := spec.Components.Schemas["Prompt"]; !ok {
		t.Error("group schemas should be merged into components")
	}

	list := spec.Paths["/prompts"]
	if list == nil || list.Get == nil || list.Get.Summary != "list" {
		t.Fatalf("list operation: got %+v", list)
	}
	if len(list.Get.Tags) != 1 || list.Get.Tags[0] != "Prompts" {
		t.Errorf("list tags: got %v, want [Prompts]", list.Get.Tags)
	}

	item := spec.Paths["/prompts/{id}"]
	if item == nil || item.Get == nil {
		t.Fatal("find operation missing")
	}
	if item.Delete != nil {
		t.Error("undocumented route should not appear")
	}

	fav := spec.Paths["/prompts/{id}/favorite"]
	if fav == nil || fav.Post == nil {
		t.Fatal("nested operation missing")
	}
	if fav.Post.Tags[0] != "Favorites" {
		t.Errorf("explicit tags should win: got %v", fav.Post.Tags)
	}
}
