package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"gallery-delivery-api/internal/curation"
	"gallery-delivery-api/internal/middleware"
)

func newTestRouter(t *testing.T, env *testEnv, health HealthFunc) (*gin.Engine, *middleware.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := middleware.NewAuthService(&middleware.AuthConfig{JWTSecret: "secret", TokenDuration: time.Hour})
	logger := quietLogger()
	config := &RouterConfig{
		Handlers:    env.handlers,
		Curation:    curation.NewAPI(curation.WithJournal(env.services.Journal), curation.WithLogger(logger)),
		AuthService: auth,
		Health:      health,
		Mode:        "server",
		Logger:      logger,
	}

	router := gin.New()
	SetupMiddleware(router, logger)
	SetupRoutes(router, config)
	SetupDevelopmentRoutes(router, config)
	return router, auth
}

func serve(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouterGalleryFlow(t *testing.T) {
	env := newTestEnv(t)
	router, _ := newTestRouter(t, env, nil)

	w := serve(router, http.MethodPost, "/galleries", `{"name":"Kim Lee"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var created CreateGalleryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	w = serve(router, http.MethodGet, "/auth?galleryCode="+created.GalleryCode+"&password="+created.Password, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = serve(router, http.MethodGet, "/images?galleryCode="+created.GalleryCode, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected CORS header, got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a request id header")
	}

	w = serve(router, http.MethodDelete, "/galleries", `{"galleryCode":"`+created.GalleryCode+`"}`, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRouterSessionRoutes(t *testing.T) {
	env := newTestEnv(t)
	router, auth := newTestRouter(t, env, nil)

	token, err := auth.IssueGalleryToken("ROSE2025A")
	if err != nil {
		t.Fatalf("IssueGalleryToken failed: %v", err)
	}
	bearer := map[string]string{"Authorization": "Bearer " + token}

	w := serve(router, http.MethodGet, "/session/images", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", w.Code)
	}

	w = serve(router, http.MethodGet, "/session/images", "", bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var listing ListImagesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if listing.GalleryCode != "ROSE2025A" {
		t.Errorf("Expected the token's gallery, got %q", listing.GalleryCode)
	}

	w = serve(router, http.MethodGet, "/session/images?galleryCode=OTHER", "", bearer)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}

	w = serve(router, http.MethodPost, "/session/refresh", "", bearer)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRouterCuration(t *testing.T) {
	env := newTestEnv(t)
	router, _ := newTestRouter(t, env, nil)

	w := serve(router, http.MethodPost, "/vip/galleries/g1/trash", `{"assetIds":["a1","a2"],"ttlDays":7}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var trash curation.TrashResult
	if err := json.Unmarshal(w.Body.Bytes(), &trash); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if trash.GalleryID != "g1" || len(trash.Trashed) != 2 {
		t.Errorf("Unexpected trash result %+v", trash)
	}

	records, err := env.repos.Curation().ListByGallery(context.Background(), "g1")
	if err != nil {
		t.Fatalf("ListByGallery failed: %v", err)
	}
	if len(records) != 1 || records[0].TTLDays != 7 {
		t.Errorf("Expected one journaled trash record, got %+v", records)
	}

	w = serve(router, http.MethodDelete, "/vip/galleries/g1/folders/f1/items", `{"assetIds":[]}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	w = serve(router, http.MethodOptions, "/vip/galleries/g1/restore", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected preflight status 200, got %d", w.Code)
	}

	w = serve(router, http.MethodGet, "/vip/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"service":"vip"`) {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestRouterHealth(t *testing.T) {
	env := newTestEnv(t)

	router, _ := newTestRouter(t, env, func(context.Context) error { return nil })
	if w := serve(router, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	router, _ = newTestRouter(t, env, func(context.Context) error { return errors.New("db down") })
	w := serve(router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "db down") {
		t.Errorf("Expected failure detail in body, got %s", w.Body.String())
	}
}

func TestResourceTemplateConversion(t *testing.T) {
	in := "/vip/galleries/{galleryId}/folders/{folderId}/items"
	path := resourceToGin(in)
	if path != "/vip/galleries/:galleryId/folders/:folderId/items" {
		t.Errorf("Unexpected gin path %s", path)
	}
	if back := ginToResource(path); back != in {
		t.Errorf("Expected round trip to %s, got %s", in, back)
	}
}
