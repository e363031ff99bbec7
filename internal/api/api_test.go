package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/promptvault/internal/api"
	"github.com/JaimeStill/promptvault/internal/config"
	"github.com/JaimeStill/promptvault/internal/infrastructure"
	"github.com/JaimeStill/promptvault/pkg/module"
	"github.com/JaimeStill/promptvault/pkg/openapi"
)

func setup(t *testing.T) (*config.Config, *infrastructure.Infrastructure) {
	t.Helper()
	dir := t.TempDir()

	content := fmt.Sprintf(`
[database]
host = "127.0.0.1"
port = 1
name = "promptvault"
user = "vault"
conn_timeout = "50ms"

[storage]
provider = "filesystem"
root = %q

[sync]
remote_timeout = "200ms"

[api.pagination]
default_page_size = 20
max_page_size = 100

[logging]
level = "error"
`, filepath.Join(dir, "store"))

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(time.Second) })

	return cfg, infra
}

func serve(m *module.Module, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNewRuntime(t *testing.T) {
	cfg, infra := setup(t)
	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Logger == nil || runtime.Database == nil || runtime.Storage == nil || runtime.Lifecycle == nil {
		t.Error("runtime should carry every infrastructure system")
	}
	if runtime.Config != cfg {
		t.Error("runtime should reference the loaded config")
	}
}

func TestNewDomain(t *testing.T) {
	cfg, infra := setup(t)

	domain, err := api.NewDomain(api.NewRuntime(cfg, infra))
	if err != nil {
		t.Fatalf("NewDomain() error = %v", err)
	}
	if domain.Store == nil || domain.Cache == nil || domain.Library == nil || domain.Exporter == nil {
		t.Errorf("domain systems missing: %+v", domain)
	}
}

func TestNewModule(t *testing.T) {
	cfg, infra := setup(t)

	m, domain, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}

	deadline := time.Now().Add(5 * time.Second)
	for !domain.Library.Ready() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !domain.Library.Ready() {
		t.Fatal("library should finish its first reconcile attempt")
	}
	if domain.Library.Status().Synced {
		t.Error("unreachable remote should not report synced")
	}

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list prompts", "GET", "/api/prompts", http.StatusOK},
		{"categories", "GET", "/api/prompts/categories", http.StatusOK},
		{"status", "GET", "/api/prompts/status", http.StatusOK},
		{"unknown prompt", "GET", "/api/prompts/missing", http.StatusNotFound},
		{"selection", "GET", "/api/selection", http.StatusOK},
		{"export empty selection", "POST", "/api/export", http.StatusConflict},
		{"export formats", "GET", "/api/export/formats", http.StatusOK},
		{"clear cache", "DELETE", "/api/cache", http.StatusNoContent},
		{"openapi", "GET", "/api/openapi.json", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(m, tt.method, tt.path)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestOpenAPIDocument(t *testing.T) {
	cfg, infra := setup(t)

	m, _, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	rec := serve(m, "GET", "/api/openapi.json")

	var spec openapi.Spec
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode spec: %v", err)
	}

	if spec.Info.Title != "PromptVault API" {
		t.Errorf("title: got %s", spec.Info.Title)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers: got %+v", spec.Servers)
	}

	paths := []string{
		"/prompts",
		"/prompts/{id}",
		"/prompts/{id}/favorite",
		"/prompts/migration",
		"/selection/{id}",
		"/export",
		"/import",
		"/cache",
	}
	for _, p := range paths {
		if _, ok := spec.Paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}

	for _, name := range []string{"Prompt", "PromptCommand", "MigrationPlan", "ImportResult"} {
		if _, ok := spec.Components.Schemas[name]; !ok {
			t.Errorf("missing schema %s", name)
		}
	}
}
