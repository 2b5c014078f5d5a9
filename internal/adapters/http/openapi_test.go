package http_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/fencekeeper/internal/adapters/http"
)

// findOpenAPISpec locates the openapi.yaml file by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	// Start from the current working directory or test file location
	dir, _ := os.Getwd()

	// Look for api/openapi.yaml by going up directories
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

// TestOpenAPISpec validates the OpenAPI specification is valid.
func TestOpenAPISpec(t *testing.T) {
	// Load the spec file
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	// Parse YAML spec
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	// Validate the spec
	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	// Check that key paths exist
	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/fences",
		"/v1/fences/{id}",
		"/v1/delivery-rules",
		"/v1/merchant/config",
		"/v1/delivery/check",
		"/v1/orders",
		"/v1/orders/{id}",
		"/v1/orders/check-delivery",
		"/graphql",
	}

	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	// Verify key schemas exist
	expectedSchemas := []string{
		"Coordinates",
		"Fence",
		"FenceInput",
		"DeliveryRule",
		"DeliveryCheck",
		"MerchantConfig",
		"Order",
		"CreateOrderInput",
		"PaginatedOrders",
		"APIError",
	}

	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	// Sort fields and statuses must match what the server accepts.
	sortBy := findQueryParam(spec, "/v1/orders", "sortBy")
	if sortBy == nil {
		t.Fatal("expected sortBy parameter on GET /v1/orders")
	}
	wantSort := map[string]bool{"createTime": true, "amount": true, "status": true, "recipientName": true}
	for _, v := range sortBy.Schema.Value.Enum {
		if !wantSort[v.(string)] {
			t.Errorf("unexpected sortBy value %v", v)
		}
		delete(wantSort, v.(string))
	}
	if len(wantSort) != 0 {
		t.Errorf("sortBy enum missing %v", wantSort)
	}

	t.Logf("OpenAPI spec valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

// TestOpenAPIInfo verifies spec metadata.
func TestOpenAPIInfo(t *testing.T) {
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	if spec.Info.Title != "Fencekeeper API" {
		t.Errorf("expected title 'Fencekeeper API', got %q", spec.Info.Title)
	}

	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}

	if spec.Info.Description == "" {
		t.Error("expected non-empty description")
	}

	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}

	t.Logf("OpenAPI Info: %s v%s @ %s", spec.Info.Title, spec.Info.Version, spec.Servers[0].URL)
}

func findQueryParam(spec *openapi3.T, path, name string) *openapi3.Parameter {
	item := spec.Paths.Find(path)
	if item == nil || item.Get == nil {
		return nil
	}
	for _, ref := range item.Get.Parameters {
		if ref.Value != nil && ref.Value.In == openapi3.ParameterInQuery && ref.Value.Name == name {
			return ref.Value
		}
	}
	return nil
}

func TestDocsServeContract(t *testing.T) {
	app := fiber.New()
	handler.SetupDocs(app, findOpenAPISpec(t))

	for path, ctype := range map[string]string{
		"/docs/openapi.yaml": "application/yaml",
		"/docs/openapi.json": "application/json",
		"/docs":              "text/html; charset=utf-8",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		if got := resp.Header.Get("Content-Type"); got != ctype {
			t.Errorf("%s: expected %q, got %q", path, ctype, got)
		}
	}
}

func TestDocsMissingContract(t *testing.T) {
	app := fiber.New()
	handler.SetupDocs(app, filepath.Join(t.TempDir(), "missing.yaml"))

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/openapi.json", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
