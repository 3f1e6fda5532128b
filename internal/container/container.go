// Package container provides dependency injection management for the
// fingerprint identification service. It consolidates all services and
// provides type-safe access to dependencies.
package container

import (
	"context"
	"sync"

	"github.com/zfogg/echomatch/internal/cache"
	"github.com/zfogg/echomatch/internal/ingest"
	"github.com/zfogg/echomatch/internal/logger"
	"github.com/zfogg/echomatch/internal/match"
	"github.com/zfogg/echomatch/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies and provides type-safe access.
// It implements the Service Locator pattern with additional lifecycle management.
type Container struct {
	// Core infrastructure
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.RedisClient

	// Domain services
	store   store.Store
	matcher *match.Matcher
	ingest  *ingest.Pool

	// Lifecycle hooks
	cleanupFuncs []func(context.Context) error
	mu           sync.RWMutex
}

// New creates a new empty container.
// Services should be registered using Set* methods.
func New() *Container {
	return &Container{
		cleanupFuncs: make([]func(context.Context) error, 0),
	}
}

// ============================================================================
// CORE INFRASTRUCTURE SETTERS/GETTERS
// ============================================================================

// SetDB registers the database connection
func (c *Container) SetDB(db *gorm.DB) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	return c
}

// DB returns the database connection
func (c *Container) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// SetLogger registers the logger
func (c *Container) SetLogger(l *zap.Logger) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
	return c
}

// Logger returns the logger instance
func (c *Container) Logger() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.logger == nil {
		return logger.Log
	}
	return c.logger
}

// SetCache registers the Redis cache client
func (c *Container) SetCache(client *cache.RedisClient) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = client
	return c
}

// Cache returns the Redis cache client
func (c *Container) Cache() *cache.RedisClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// ============================================================================
// DOMAIN SERVICE SETTERS/GETTERS
// ============================================================================

// SetStore registers the fingerprint store backend
func (c *Container) SetStore(s store.Store) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = s
	return c
}

// Store returns the fingerprint store backend
func (c *Container) Store() store.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

// SetMatcher registers the matcher
func (c *Container) SetMatcher(m *match.Matcher) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matcher = m
	return c
}

// Matcher returns the matcher
func (c *Container) Matcher() *match.Matcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matcher
}

// SetIngestPool registers the ingestion worker pool
func (c *Container) SetIngestPool(p *ingest.Pool) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ingest = p
	return c
}

// IngestPool returns the ingestion worker pool
func (c *Container) IngestPool() *ingest.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ingest
}

// ============================================================================
// LIFECYCLE MANAGEMENT
// ============================================================================

// OnCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions are called in LIFO order (last registered, first cleaned up).
// This ensures proper dependency ordering during shutdown.
func (c *Container) OnCleanup(fn func(context.Context) error) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
	return c
}

// Cleanup performs graceful shutdown of all registered services.
// It calls cleanup functions in reverse order of registration.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](ctx); err != nil {
			c.Logger().Error("cleanup function failed",
				zap.Int("index", i),
				zap.Error(err),
			)
		}
	}

	return nil
}

// ============================================================================
// VALIDATION
// ============================================================================

// Validate checks that all required dependencies are registered.
// This should be called after initialization and before starting the server.
func (c *Container) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var missingDeps []string

	if c.db == nil {
		missingDeps = append(missingDeps, "database (DB)")
	}
	if c.store == nil {
		missingDeps = append(missingDeps, "fingerprint store")
	}
	if c.matcher == nil {
		missingDeps = append(missingDeps, "matcher")
	}
	if c.ingest == nil {
		missingDeps = append(missingDeps, "ingestion pool")
	}

	if len(missingDeps) > 0 {
		return NewInitializationError("missing required dependencies", missingDeps)
	}

	return nil
}

// ============================================================================
// FLUENT API SUPPORT
// ============================================================================

// WithDB is a fluent setter for database
func (c *Container) WithDB(db *gorm.DB) *Container {
	return c.SetDB(db)
}

// WithLogger is a fluent setter for logger
func (c *Container) WithLogger(l *zap.Logger) *Container {
	return c.SetLogger(l)
}

// WithCache is a fluent setter for cache
func (c *Container) WithCache(client *cache.RedisClient) *Container {
	return c.SetCache(client)
}

// WithStore is a fluent setter for the fingerprint store
func (c *Container) WithStore(s store.Store) *Container {
	return c.SetStore(s)
}

// WithMatcher is a fluent setter for the matcher
func (c *Container) WithMatcher(m *match.Matcher) *Container {
	return c.SetMatcher(m)
}

// WithIngestPool is a fluent setter for the ingestion pool
func (c *Container) WithIngestPool(p *ingest.Pool) *Container {
	return c.SetIngestPool(p)
}
