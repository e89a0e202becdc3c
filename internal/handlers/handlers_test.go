package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"gallery-delivery-api/internal/adapters/storage"
	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/notify"
	"gallery-delivery-api/internal/repositories/memory"
	"gallery-delivery-api/internal/services"
	"gallery-delivery-api/pkg/lambda"
)

type testEnv struct {
	repos    *memory.RepositoryManager
	objects  *storage.MockFileStorage
	handlers *Handlers
	services *services.ServiceContainer
}

type staticTokens struct{}

func (staticTokens) IssueGalleryToken(code string) (string, error) { return "tok-" + code, nil }

type nopMailer struct{}

func (nopMailer) Send(context.Context, notify.Message) error { return nil }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos := memory.NewRepositoryManager()
	objects := storage.NewMockFileStorage()
	logger := quietLogger()

	svc := &services.ServiceContainer{
		GalleryService: services.NewGalleryService(repos.Galleries(), repos.Images(), objects, staticTokens{},
			services.GalleryOptions{DemoEnabled: true, BcryptCost: bcrypt.MinCost}, logger),
		ImageService: services.NewImageService(repos.Images(), repos.Galleries(), objects,
			services.ImageOptions{Bucket: "photos"}, logger),
		ContactService: services.NewContactService(repos.Contacts(), nopMailer{},
			services.ContactOptions{NotifyTo: []string{"studio@example.com"}}, logger),
		Journal: services.NewCurationJournal(repos.Curation(), logger),
	}

	return &testEnv{
		repos:    repos,
		objects:  objects,
		handlers: New(svc, logger),
		services: svc,
	}
}

func jsonRequest(method, path string, body interface{}) *lambda.Request {
	raw, _ := json.Marshal(body)
	return &lambda.Request{Method: method, Path: path, Body: raw}
}

func decode(t *testing.T, resp *lambda.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", resp.Body, err)
	}
	return out
}

func (e *testEnv) createGallery(t *testing.T, name string) (string, string) {
	t.Helper()
	resp := e.handlers.Gallery.Handle(context.Background(), jsonRequest(http.MethodPost, "/galleries", map[string]string{"name": name}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	body := decode(t, resp)
	return body["galleryCode"].(string), body["password"].(string)
}

func TestAuthHandler(t *testing.T) {
	env := newTestEnv(t)
	code, password := env.createGallery(t, "Jane Smith")
	ctx := context.Background()

	t.Run("post body", func(t *testing.T) {
		resp := env.handlers.Auth.Handle(ctx, jsonRequest(http.MethodPost, "/auth", Credentials{GalleryCode: code, Password: password}))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		body := decode(t, resp)
		if body["success"] != true {
			t.Errorf("Expected success true, got %v", body["success"])
		}
		if body["token"] != "tok-"+code {
			t.Errorf("Expected token for %s, got %v", code, body["token"])
		}
		gallery := body["gallery"].(map[string]interface{})
		if gallery["clientName"] != "Jane Smith" {
			t.Errorf("Expected clientName Jane Smith, got %v", gallery["clientName"])
		}
		if resp.Headers["Access-Control-Allow-Origin"] != "*" {
			t.Error("Expected CORS headers on the response")
		}
	})

	t.Run("get query", func(t *testing.T) {
		req := &lambda.Request{Method: http.MethodGet, QueryParams: map[string]string{"galleryCode": code, "password": password}}
		if resp := env.handlers.Auth.Handle(ctx, req); resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
	})

	t.Run("demo gallery", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/auth", Credentials{GalleryCode: models.DemoGalleryCode, Password: models.DemoGalleryPassword})
		if resp := env.handlers.Auth.Handle(ctx, req); resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
	})

	rejected := []struct {
		name string
		req  *lambda.Request
	}{
		{"wrong password", jsonRequest(http.MethodPost, "/auth", Credentials{GalleryCode: code, Password: "nope"})},
		{"missing fields", jsonRequest(http.MethodPost, "/auth", map[string]string{})},
		{"invalid json", &lambda.Request{Method: http.MethodPost, Body: []byte("{")}},
		{"no query", &lambda.Request{Method: http.MethodGet}},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.handlers.Auth.Handle(ctx, tc.req)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("Expected status 401, got %d", resp.StatusCode)
			}
			if body := decode(t, resp); body["message"] != "Invalid credentials" {
				t.Errorf("Expected Invalid credentials, got %v", body["message"])
			}
		})
	}

	t.Run("preflight", func(t *testing.T) {
		resp := env.handlers.Auth.Handle(ctx, &lambda.Request{Method: http.MethodOptions})
		if resp.StatusCode != http.StatusOK || len(resp.Body) != 0 {
			t.Errorf("Expected empty 200 preflight, got %d %q", resp.StatusCode, resp.Body)
		}
	})
}

func TestGalleryHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.handlers.Gallery.Handle(ctx, jsonRequest(http.MethodPost, "/galleries", map[string]string{"name": "Lee Park", "package": "Wedding"}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	body := decode(t, resp)
	if body["message"] != "Gallery created for Lee Park" {
		t.Errorf("Unexpected message %v", body["message"])
	}
	code := body["galleryCode"].(string)

	bad := []struct {
		name string
		req  *lambda.Request
	}{
		{"invalid json", &lambda.Request{Method: http.MethodPost, Body: []byte("not json")}},
		{"missing name", jsonRequest(http.MethodPost, "/galleries", map[string]string{"email": "a@b.co"})},
		{"bad email", jsonRequest(http.MethodPost, "/galleries", map[string]string{"name": "Al", "email": "nope"})},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if resp := env.handlers.Gallery.Handle(ctx, tc.req); resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}

	resp = env.handlers.Gallery.Handle(ctx, jsonRequest(http.MethodDelete, "/galleries", map[string]string{}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing code, got %d", resp.StatusCode)
	}
	if body := decode(t, resp); body["message"] != "Gallery code is required" {
		t.Errorf("Unexpected message %v", body["message"])
	}

	resp = env.handlers.Gallery.Handle(ctx, jsonRequest(http.MethodDelete, "/galleries", DeleteGalleryRequest{GalleryCode: code}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	body = decode(t, resp)
	if body["message"] != "Gallery "+code+" deleted successfully" {
		t.Errorf("Unexpected message %v", body["message"])
	}
	deleted := body["deleted"].(map[string]interface{})
	if deleted["images"] != float64(0) || deleted["s3_objects"] != float64(0) {
		t.Errorf("Unexpected deletion counts %v", deleted)
	}

	if resp := env.handlers.Gallery.Handle(ctx, &lambda.Request{Method: http.MethodGet}); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", resp.StatusCode)
	}
}

func TestImageHandler(t *testing.T) {
	env := newTestEnv(t)
	code, _ := env.createGallery(t, "Rose")
	ctx := context.Background()

	upload := services.UploadImagesRequest{
		GalleryCode: code,
		Images: []services.ImageUpload{
			{FileName: "a.jpg", Content: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("a"))},
			{Content: "###"},
		},
	}
	resp := env.handlers.Image.Handle(ctx, jsonRequest(http.MethodPost, "/images/upload", upload))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	body := decode(t, resp)
	if body["message"] != "Uploaded 1 of 2 images" {
		t.Errorf("Unexpected message %v", body["message"])
	}
	images := body["images"].([]interface{})
	if len(images) != 2 || images[1].(map[string]interface{})["success"] != false {
		t.Errorf("Expected second image to fail, got %v", images)
	}

	uploadErrors := []struct {
		name    string
		body    interface{}
		message string
	}{
		{"missing code", map[string]interface{}{"images": []interface{}{map[string]string{"content": "YQ=="}}}, "Gallery code is required"},
		{"no images", map[string]interface{}{"galleryCode": code}, "No images provided"},
	}
	for _, tc := range uploadErrors {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.handlers.Image.Handle(ctx, jsonRequest(http.MethodPost, "/images/upload", tc.body))
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", resp.StatusCode)
			}
			if body := decode(t, resp); body["message"] != tc.message {
				t.Errorf("Expected %q, got %v", tc.message, body["message"])
			}
		})
	}

	listing := []*lambda.Request{
		{Method: http.MethodGet, Path: "/images", QueryParams: map[string]string{"galleryCode": code}},
		jsonRequest(http.MethodPost, "/images", ListImagesRequest{GalleryCode: code}),
	}
	for _, req := range listing {
		resp := env.handlers.Image.Handle(ctx, req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		body := decode(t, resp)
		if body["count"] != float64(1) || body["galleryCode"] != code {
			t.Errorf("Unexpected listing %v", body)
		}
		first := body["images"].([]interface{})[0].(map[string]interface{})
		url, _ := first["url"].(string)
		if url != "https://photos.s3.amazonaws.com/galleries/"+code+"/"+first["imageId"].(string)+".jpg" {
			t.Errorf("Unexpected url %q", url)
		}
	}

	resp = env.handlers.Image.Handle(ctx, &lambda.Request{Method: http.MethodGet, Path: "/images"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
	body = decode(t, resp)
	if body["message"] != "galleryCode is required" {
		t.Errorf("Unexpected message %v", body["message"])
	}
	if imgs, ok := body["images"].([]interface{}); !ok || len(imgs) != 0 {
		t.Errorf("Expected empty images array, got %v", body["images"])
	}

	if resp := env.handlers.Image.Handle(ctx, &lambda.Request{Method: http.MethodGet, Path: "/images/upload"}); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", resp.StatusCode)
	}
}

func TestContactHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.handlers.Contact.Handle(ctx, jsonRequest(http.MethodPost, "/contact", services.ContactRequest{
		Name: "Sam", Email: "sam@example.com", Service: "Portrait", Message: "Hi",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	body := decode(t, resp)
	if body["message"] != "Contact form submitted successfully!" {
		t.Errorf("Unexpected message %v", body["message"])
	}
	if _, err := env.repos.Contacts().GetByID(ctx, body["id"].(string)); err != nil {
		t.Errorf("Expected contact to be stored: %v", err)
	}

	resp = env.handlers.Contact.Handle(ctx, jsonRequest(http.MethodPost, "/contact", services.ContactRequest{Email: "bad"}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	resp = env.handlers.Contact.Handle(ctx, &lambda.Request{Method: http.MethodPost})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty body, got %d", resp.StatusCode)
	}
}

func TestCleanupHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	old := models.NewGallery("OLD2024A", "Old", time.Now().Add(-200*24*time.Hour), time.Hour)
	old.PasswordHash = "x"
	if err := env.repos.Galleries().Create(ctx, old); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resp := env.handlers.Cleanup.Run(ctx)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if resp.GalleriesDeleted != 1 || resp.DeletedGalleries[0] != "OLD2024A" {
		t.Errorf("Unexpected summary %+v", resp.CleanupSummary)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := env.repos.Galleries().Create(context.Background(), old); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp := env.handlers.Cleanup.Run(ctx); resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for a cancelled run, got %d", resp.StatusCode)
	}
}

func TestDecodeBodyPrefersDecoded(t *testing.T) {
	var out DeleteGalleryRequest
	req := &lambda.Request{Decoded: map[string]interface{}{"galleryCode": "X"}, Body: []byte(`{"galleryCode":"Y"}`)}
	if err := decodeBody(req, &out); err != nil {
		t.Fatalf("decodeBody failed: %v", err)
	}
	if out.GalleryCode != "X" {
		t.Errorf("Expected X, got %s", out.GalleryCode)
	}

	if err := decodeBody(&lambda.Request{Body: []byte("  ")}, &out); err != errEmptyBody {
		t.Errorf("Expected errEmptyBody, got %v", err)
	}
}
