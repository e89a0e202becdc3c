package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"gallery-delivery-api/internal/curation"
	"gallery-delivery-api/internal/middleware"
	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/pkg/lambda"
)

// maxUploadBytes bounds request bodies; uploads carry base64 images
const maxUploadBytes = 20 * 1024 * 1024

// HealthFunc reports whether the backing stores are reachable
type HealthFunc func(ctx context.Context) error

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Handlers    *Handlers
	Curation    *curation.API
	AuthService *middleware.AuthService
	Health      HealthFunc
	Mode        string
	Logger      *logrus.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	h := config.Handlers

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", healthHandler(config))

	router.POST("/auth", Adapt(h.Auth.Handle))
	router.GET("/auth", Adapt(h.Auth.Handle))

	router.POST("/galleries", Adapt(h.Gallery.HandleCreate))
	router.DELETE("/galleries", Adapt(h.Gallery.HandleDelete))

	router.POST("/images/upload", Adapt(h.Image.HandleUpload))
	router.GET("/images", Adapt(h.Image.HandleList))
	router.POST("/images", Adapt(h.Image.HandleList))

	router.POST("/contact", Adapt(h.Contact.Handle))

	// token-scoped variants for clients that already signed in
	session := router.Group("/session")
	session.Use(middleware.GalleryAuthentication(config.AuthService), middleware.RequireGalleryMatch())
	{
		session.GET("/images", func(c *gin.Context) {
			code, _ := middleware.GalleryCodeFromContext(c)
			q := c.Request.URL.Query()
			q.Set("galleryCode", code)
			c.Request.URL.RawQuery = q.Encode()
			Adapt(h.Image.HandleList)(c)
		})
		session.POST("/refresh", func(c *gin.Context) {
			token, _ := middleware.BearerToken(c.GetHeader("Authorization"))
			refreshed, err := config.AuthService.RefreshToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "Invalid or expired token"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "token": refreshed})
		})
	}

	if config.Curation != nil {
		registerCuration(router, config.Curation)
	}
}

// registerCuration mounts the curation route table. Preflights are answered
// by the CORS middleware and the curation health check by /health.
func registerCuration(router *gin.Engine, api *curation.API) {
	handler := Adapt(lambda.HandlerFunc(api.Handle))
	for _, route := range curation.Routes() {
		if route.Method == http.MethodOptions || route.Resource == curation.ResourceHealth {
			continue
		}
		router.Handle(route.Method, resourceToGin(route.Resource), handler)
	}
	router.GET("/vip/health", func(c *gin.Context) {
		resp := api.Handle(c.Request.Context(), &lambda.Request{Method: http.MethodGet, Resource: curation.ResourceHealth})
		writeResponse(c, resp)
	})
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthCheck
// @Failure 503 {object} models.HealthCheck
// @Router /health [get]
func healthHandler(config *RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		check := models.HealthCheck{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Mode:      config.Mode,
			Services:  map[string]string{"database": "ok"},
		}

		status := http.StatusOK
		if config.Health != nil {
			if err := config.Health(c.Request.Context()); err != nil {
				check.Status = "unhealthy"
				check.Services["database"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, check)
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, logger *logrus.Logger) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(maxUploadBytes))
	router.Use(middleware.ContentTypeValidation("application/json"))
	router.Use(middleware.RateLimiter(20, 40))
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
}

// SetupDevelopmentRoutes adds development-only routes
func SetupDevelopmentRoutes(router *gin.Engine, config *RouterConfig) {
	dev := router.Group("/dev")
	{
		dev.POST("/cleanup", func(c *gin.Context) {
			resp := config.Handlers.Cleanup.Run(c.Request.Context())
			c.JSON(resp.StatusCode, resp)
		})

		dev.GET("/routes", func(c *gin.Context) {
			routes := make([]gin.H, 0)
			for _, r := range curation.Routes() {
				routes = append(routes, gin.H{"method": r.Method, "resource": r.Resource})
			}
			c.JSON(http.StatusOK, gin.H{
				"curation":    routes,
				"swagger_url": "/swagger/index.html",
			})
		})
	}
}
