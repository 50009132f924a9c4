package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/config"
	"github.com/redisplay/simple-gallery/internal/security"
	"github.com/redisplay/simple-gallery/internal/tenant"
)

func newTestRouter(t *testing.T) (*gin.Engine, *tenant.Registry, *config.AppConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		Environment: "test",
		DataDir:     t.TempDir(),
		Storage:     config.StorageConfig{Driver: "fs"},
		Security: config.SecurityConfig{
			JWTSecret: "test-secret",
			JWTTTL:    time.Hour,
		},
	}
	registry := tenant.NewRegistry(cfg, zerolog.Nop(), nil)
	t.Cleanup(registry.Close)

	engine := gin.New()
	NewHandlerSet(zerolog.Nop(), cfg, registry).Register(engine.Group("/api"))
	return engine, registry, cfg
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestDeliverRequiresToken(t *testing.T) {
	engine, _, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/g/holidays/next", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("no token: status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/g/holidays/next", "made-up-token", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unknown token: status = %d, want 403", rec.Code)
	}
}

func TestDeliverEmptyCollectionHasDistinctCode(t *testing.T) {
	engine, registry, _ := newTestRouter(t)

	g, err := registry.Get(context.Background(), "holidays")
	if err != nil {
		t.Fatalf("open gallery: %v", err)
	}
	if _, err := g.Tokens.Create(context.Background(), "viewer-tok"); err != nil {
		t.Fatalf("create token: %v", err)
	}

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/g/holidays/next?mode=random", "viewer-tok", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "empty_collection" {
		t.Fatalf("error = %q, want empty_collection", body["error"])
	}
}

func TestInvalidGalleryKeyIsNotFound(t *testing.T) {
	engine, _, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/g/UPPER/next", "x", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTokenAdminEndpoints(t *testing.T) {
	engine, _, cfg := newTestRouter(t)

	admin, err := security.GenerateAdminToken(cfg.Security.JWTSecret, "holidays", cfg.Security.JWTTTL)
	if err != nil {
		t.Fatalf("admin token: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/g/holidays/tokens", admin, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil || created.Token == "" {
		t.Fatalf("create body = %s (%v)", rec.Body.String(), err)
	}

	// The minted token is immediately usable for delivery auth (empty
	// gallery, so empty_collection rather than forbidden).
	rec = doJSON(t, engine, http.MethodGet, "/api/v1/g/holidays/next", created.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deliver with minted token: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodDelete, "/api/v1/g/holidays/tokens/"+created.Token, admin, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/g/holidays/next", created.Token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("deliver with revoked token: status = %d, want 403", rec.Code)
	}
}

func TestAdminScopeIsPerGallery(t *testing.T) {
	engine, _, cfg := newTestRouter(t)

	admin, err := security.GenerateAdminToken(cfg.Security.JWTSecret, "other-gallery", cfg.Security.JWTTTL)
	if err != nil {
		t.Fatalf("admin token: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/g/holidays/tokens", admin, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross-gallery admin: status = %d, want 403", rec.Code)
	}
}

func TestSetMaxResolutionValidation(t *testing.T) {
	engine, _, cfg := newTestRouter(t)

	admin, err := security.GenerateAdminToken(cfg.Security.JWTSecret, "holidays", cfg.Security.JWTTTL)
	if err != nil {
		t.Fatalf("admin token: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPut, "/api/v1/g/holidays/settings/max-resolution", admin,
		map[string]int{"maxResolution": 100000})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPut, "/api/v1/g/holidays/settings/max-resolution", admin,
		map[string]int{"maxResolution": 1280})
	if rec.Code != http.StatusOK {
		t.Fatalf("valid: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/g/holidays/settings/max-resolution", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d, want 200", rec.Code)
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["maxResolution"] != 1280 {
		t.Fatalf("get body = %s (%v)", rec.Body.String(), err)
	}
}
