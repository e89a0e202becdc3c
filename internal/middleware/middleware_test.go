package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(now time.Time) *AuthService {
	return NewAuthService(&AuthConfig{
		JWTSecret:     "test-secret",
		TokenDuration: time.Hour,
		Now:           func() time.Time { return now },
	})
}

func TestIssueAndValidateGalleryToken(t *testing.T) {
	now := time.Now()
	auth := newAuth(now)

	token, err := auth.IssueGalleryToken("SMITH2025A")
	if err != nil {
		t.Fatalf("IssueGalleryToken failed: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.GalleryCode != "SMITH2025A" {
		t.Errorf("Expected gallery code SMITH2025A, got %s", claims.GalleryCode)
	}
	if claims.Subject != "SMITH2025A" {
		t.Errorf("Expected subject SMITH2025A, got %s", claims.Subject)
	}

	if _, err := auth.IssueGalleryToken(""); err == nil {
		t.Error("Expected error for empty gallery code")
	}
}

func TestValidateTokenRejections(t *testing.T) {
	now := time.Now()
	auth := newAuth(now)
	token, err := auth.IssueGalleryToken("SMITH2025A")
	if err != nil {
		t.Fatalf("IssueGalleryToken failed: %v", err)
	}

	t.Run("expired", func(t *testing.T) {
		later := newAuth(now.Add(2 * time.Hour))
		if _, err := later.ValidateToken(token); err == nil {
			t.Error("Expected expired token to be rejected")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(&AuthConfig{JWTSecret: "other", Now: func() time.Time { return now }})
		if _, err := other.ValidateToken(token); err == nil {
			t.Error("Expected token signed with another secret to be rejected")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := auth.ValidateToken("not.a.token"); err == nil {
			t.Error("Expected malformed token to be rejected")
		}
	})
}

func TestRefreshToken(t *testing.T) {
	auth := newAuth(time.Now())
	token, _ := auth.IssueGalleryToken("LEE2025B")

	refreshed, err := auth.RefreshToken(token)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	claims, err := auth.ValidateToken(refreshed)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.GalleryCode != "LEE2025B" {
		t.Errorf("Expected gallery code LEE2025B, got %s", claims.GalleryCode)
	}
}

func TestEphemeralSecret(t *testing.T) {
	auth := NewAuthService(&AuthConfig{})
	token, err := auth.IssueGalleryToken("A")
	if err != nil {
		t.Fatalf("IssueGalleryToken failed: %v", err)
	}
	if _, err := auth.ValidateToken(token); err != nil {
		t.Errorf("Expected token to validate with the ephemeral key, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer abc", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGalleryAuthentication(t *testing.T) {
	auth := newAuth(time.Now())
	token, _ := auth.IssueGalleryToken("SMITH2025A")

	router := gin.New()
	router.GET("/images", GalleryAuthentication(auth), RequireGalleryMatch(), func(c *gin.Context) {
		code, _ := GalleryCodeFromContext(c)
		c.String(http.StatusOK, code)
	})

	tests := []struct {
		name   string
		url    string
		header string
		status int
	}{
		{"no header", "/images", "", http.StatusUnauthorized},
		{"bad token", "/images", "Bearer nope", http.StatusUnauthorized},
		{"valid", "/images", "Bearer " + token, http.StatusOK},
		{"matching gallery", "/images?galleryCode=SMITH2025A", "Bearer " + token, http.StatusOK},
		{"other gallery", "/images?galleryCode=OTHER2025A", "Bearer " + token, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK && w.Body.String() != "SMITH2025A" {
				t.Errorf("Expected gallery code in context, got %q", w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.POST("/contact", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/contact", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected preflight status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected allow-origin *, got %q", got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/contact", nil))
	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "DELETE") {
		t.Errorf("Expected allow-methods to include DELETE, got %q", got)
	}
}

func TestRequestIDAndStructuredLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()

	router := gin.New()
	router.Use(RequestID(), StructuredLogger(logger))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-1" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("Expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("Expected warn level for 404, got %s", entry.Level)
	}
	if entry.Data["request_id"] != "req-1" {
		t.Errorf("Expected request_id field, got %v", entry.Data["request_id"])
	}
}

func TestAuditLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()

	router := gin.New()
	router.Use(AuditLogger(logger))
	router.GET("/images", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/vip/galleries/:galleryId/trash", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/images", nil))
	if len(hook.AllEntries()) != 0 {
		t.Errorf("Expected reads not to be audited, got %d entries", len(hook.AllEntries()))
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/vip/galleries/g1/trash", nil))
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("Expected an audit entry")
	}
	if entry.Data["resource_type"] != "curation" {
		t.Errorf("Expected resource_type curation, got %v", entry.Data["resource_type"])
	}
	if entry.Data["resource_id"] != "g1" {
		t.Errorf("Expected resource_id g1, got %v", entry.Data["resource_id"])
	}
	if entry.Data["operation"] != "CREATE" {
		t.Errorf("Expected operation CREATE, got %v", entry.Data["operation"])
	}
}

func TestRateLimiter(t *testing.T) {
	router := gin.New()
	router.Use(RateLimiter(0.001, 2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 200 429], got %v", codes)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected another client to have its own bucket, got %d", w.Code)
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiters := newClientLimiters(1, 1)
	limiters.now = func() time.Time { return now }
	limiters.lastSweep = now

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		limiters.get(ip)
	}
	if len(limiters.limiters) != 3 {
		t.Fatalf("Expected 3 buckets, got %d", len(limiters.limiters))
	}

	now = now.Add(limiterIdleTTL / 2)
	first := limiters.get("10.0.0.1")

	now = now.Add(limiterIdleTTL / 2)
	if got := limiters.get("10.0.0.1"); got != first {
		t.Error("Expected an active client to keep its bucket across a sweep")
	}
	if len(limiters.limiters) != 1 {
		t.Errorf("Expected idle buckets to be evicted, got %d buckets", len(limiters.limiters))
	}
	if _, ok := limiters.limiters["10.0.0.2"]; ok {
		t.Error("Expected 10.0.0.2 to be evicted")
	}

	limiters.get("10.0.0.2")
	if len(limiters.limiters) != 2 {
		t.Errorf("Expected an evicted client to get a fresh bucket, got %d buckets", len(limiters.limiters))
	}
}

func TestContentTypeAndSizeGuards(t *testing.T) {
	router := gin.New()
	router.Use(ContentTypeValidation(), RequestSizeLimit(16))
	router.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		status      int
	}{
		{"json", `{"a":1}`, "application/json; charset=utf-8", http.StatusOK},
		{"text", `hello`, "text/plain", http.StatusUnsupportedMediaType},
		{"too large", strings.Repeat("x", 32), "application/json", http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("Expected X-Frame-Options DENY, got %q", got)
	}
}
