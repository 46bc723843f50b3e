package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/konditional/konditional/internal/builder"
	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/feature"
	"github.com/konditional/konditional/internal/registry"
	"github.com/konditional/konditional/internal/targeting"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	resolver := feature.NewResolver()
	resolver.Register(feature.Feature{
		Identifier: feature.Identifier("core", "dark-mode"),
		Key:        "dark-mode",
		Type:       feature.Boolean,
	})

	ns := registry.New("core", 0)
	def, err := builder.NewFeatureDefinition(evalcore.Bool(false)).
		AddRule(builder.NewRule(evalcore.Bool(true)).RampUp(100).Build()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	config := builder.NewConfiguration().With(feature.Identifier("core", "dark-mode"), def).Build()
	ns.Load(config)

	adminHash, err := HashAdminKey("s3cret")
	if err != nil {
		t.Fatalf("HashAdminKey: %v", err)
	}

	return New(ns, resolver, adminHash, nil, nil), "s3cret"
}

func TestHealthz_ReturnsOK(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleEvaluate_ReturnsDecision(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/evaluate/feature::core::dark-mode?stableId=ab12", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp evaluateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Value != true {
		t.Fatalf("value = %v, want true", resp.Value)
	}
	if resp.Decision != "rule" {
		t.Fatalf("decision = %q, want rule", resp.Decision)
	}
}

func TestHandleEvaluate_UnknownFeatureIs422(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/evaluate/feature::core::missing", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandleEvaluate_InvalidStableIdIs400(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/evaluate/feature::core::dark-mode?stableId=not-hex!", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleLoadSnapshot_RequiresAdminAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/snapshots", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandleLoadSnapshot_PublishesNewConfiguration(t *testing.T) {
	srv, adminKey := newTestServer(t)

	body := `{
		"flags": [
			{
				"key": "feature::core::dark-mode",
				"defaultValue": {"type": "boolean", "value": false},
				"isActive": true,
				"values": []
			}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/v1/snapshots", bytes.NewReader([]byte(body)))
	req.Header.Set("Authorization", "Bearer "+adminKey)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	result, ok := srv.namespace.Evaluate(feature.Identifier("core", "dark-mode"), targeting.Context{})
	if !ok {
		t.Fatal("expected feature to resolve after load")
	}
	if result.Value.Raw() != false {
		t.Fatalf("value = %v, want false", result.Value.Raw())
	}
}

func TestHandleRollback_RequiresHistory(t *testing.T) {
	srv, adminKey := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/rollback", bytes.NewReader([]byte(`{"steps":2}`)))
	req.Header.Set("Authorization", "Bearer "+adminKey)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (history holds only one prior configuration)", rec.Code)
	}
}
