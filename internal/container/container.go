package container

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/infrastructure/persistence/repository"
	"github.com/akhil1198/ER/internal/infrastructure/worker"
	"github.com/akhil1198/ER/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	db          *database.DB
	submissions port.SubmissionRepository
	sessions    port.SessionStore

	// Infrastructure - External
	domain   *DomainBundle
	external *ExternalBundle
	storage  port.FileStorage

	// Application
	services *ServiceBundle

	// Workers
	workers *worker.Group

	// Lifecycle
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database and repositories
// 2. Session store
// 3. Taxonomy and external clients
// 4. Receipt storage
// 5. Application services
// 6. Workers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"database", c.initDatabase},
		{"session store", c.initSessions},
		{"external clients", c.initExternalClients},
		{"storage", c.initStorage},
		{"services", c.initServices},
		{"workers", c.initWorkers},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			c.teardown()
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		c.logger.Info("Component initialized", zap.String("component", step.name))
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	errs := c.teardown()

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors: %v", len(errs), errs)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// teardown releases whatever has been initialized, newest first
func (c *Container) teardown() []error {
	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.workers != nil {
		if err := c.workers.Stop(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
		c.workers = nil
	}

	if c.external != nil {
		for _, closeFn := range c.external.closers {
			if err := closeFn(); err != nil {
				c.logger.Error("Failed to close external client", zap.Error(err))
				errs = append(errs, fmt.Errorf("close external client: %w", err))
			}
		}
		c.external.closers = nil
	}

	if c.sessions != nil {
		if err := c.sessions.Close(); err != nil {
			c.logger.Error("Failed to close session store", zap.Error(err))
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
		c.sessions = nil
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		c.db = nil
	}

	return errs
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Services returns the application services. Nil before Start.
func (c *Container) Services() *ServiceBundle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.services
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, h ComponentHealth) {
		status.Components[name] = h
		if !h.Healthy {
			status.Overall = false
		}
	}

	switch {
	case c.db == nil:
		set("database", ComponentHealth{Message: "not initialized"})
	default:
		if err := c.db.Health(ctx); err != nil {
			set("database", ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)})
		} else {
			set("database", ComponentHealth{Healthy: true})
		}
	}

	if c.sessions != nil {
		set("sessions", ComponentHealth{Healthy: true, Message: c.config.Session.Driver})
	} else {
		set("sessions", ComponentHealth{Message: "not initialized"})
	}

	if c.external != nil && c.external.Extractor != nil {
		set("extractor", ComponentHealth{Healthy: true, Message: c.external.Extractor.Name()})
	} else {
		set("extractor", ComponentHealth{Message: "not initialized"})
	}

	if c.workers != nil {
		active := c.workers.Active()
		set("workers", ComponentHealth{
			Healthy: c.workers.Running() && len(active) == c.workers.Size(),
			Message: fmt.Sprintf("active: %s", strings.Join(active, ",")),
		})
	} else {
		set("workers", ComponentHealth{Message: "not initialized"})
	}

	return status
}

func (c *Container) initDatabase() error {
	db, err := ProvideDatabase(c.ctx, &c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = db
	c.submissions = repository.NewSubmissionRepository(db.DB, c.logger)
	return nil
}

func (c *Container) initSessions() error {
	store, err := ProvideSessionStore(&c.config.Session, c.logger)
	if err != nil {
		return err
	}
	c.sessions = store
	return nil
}

func (c *Container) initExternalClients() error {
	domain, err := ProvideDomain(&c.config.Taxonomy, &c.config.Concur, c.logger)
	if err != nil {
		return err
	}
	c.domain = domain

	external, err := ProvideExternalClients(c.ctx, c.config, domain.Resolver.Table(), c.logger)
	if err != nil {
		return err
	}
	c.external = external
	c.logger.Info("Receipt extractor ready", zap.String("extractor", external.Extractor.Name()))
	return nil
}

func (c *Container) initStorage() error {
	c.storage = ProvideStorage(&c.config.Storage, c.logger)
	return nil
}

func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Config:      &c.config.Conversation,
		Sessions:    c.sessions,
		Submissions: c.submissions,
		External:    c.external,
		Storage:     c.storage,
		ReceiptDir:  c.config.Storage.ReceiptDir,
		Domain:      c.domain,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

func (c *Container) initWorkers() error {
	c.workers = ProvideWorkers(&c.config.Session, c.sessions, c.logger)
	return c.workers.Start(c.ctx)
}
