package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/config"
	"gallery-delivery-api/pkg/lambda"
)

// staleAfter marks a warm container as idle
const staleAfter = 5 * time.Minute

// ConnectionManager keeps one container alive across warm Lambda invocations
type ConnectionManager struct {
	container   *Container
	lastUsed    time.Time
	mu          sync.RWMutex
	initialized bool
	config      *config.Config
	load        func() (*config.Config, error)
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the process-wide connection manager
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager(config.GetOptimizedConfig)
	})
	return globalConnectionManager
}

// NewConnectionManager creates a manager that loads configuration lazily
func NewConnectionManager(load func() (*config.Config, error)) *ConnectionManager {
	return &ConnectionManager{load: load}
}

// Initialize builds the container from cfg. A failed attempt may be retried.
func (cm *ConnectionManager) Initialize(cfg *config.Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.initialized {
		return nil
	}

	container, err := NewContainer(cfg)
	if err != nil {
		return err
	}

	cm.config = cfg
	cm.container = container
	cm.lastUsed = time.Now()
	cm.initialized = true
	return nil
}

// GetContainer returns the container, initializing it on first use
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*Container, error) {
	cm.mu.RLock()
	if cm.initialized && cm.container != nil {
		container := cm.container
		cm.mu.RUnlock()
		cm.UpdateLastUsed()
		return container, nil
	}
	cm.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	if err := cm.Initialize(cfg); err != nil {
		return nil, err
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.container, nil
}

// IsHealthy reports whether a container exists and was used recently
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if !cm.initialized || cm.container == nil {
		return false
	}
	return time.Since(cm.lastUsed) < staleAfter
}

// Cleanup closes the container; the next GetContainer rebuilds it
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var err error
	if cm.container != nil {
		err = cm.container.Close()
		cm.container = nil
	}
	cm.initialized = false
	return err
}

// UpdateLastUsed updates the last used timestamp
func (cm *ConnectionManager) UpdateLastUsed() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.lastUsed = time.Now()
}

// LambdaHandler resolves the warm container per invocation and dispatches to
// the handler pick selects. Initialization failures become a 500 response.
func LambdaHandler(cm *ConnectionManager, pick func(*Container) lambda.HandlerFunc) lambda.HandlerFunc {
	return func(ctx context.Context, req *lambda.Request) *lambda.Response {
		container, err := cm.GetContainer(ctx)
		if err != nil {
			logrus.WithError(err).Error("Failed to initialize container")
			return lambda.JSON(http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"message": "Server error: " + err.Error(),
			})
		}
		return pick(container)(ctx, req)
	}
}
