package container

import (
	"context"

	"github.com/zfogg/echomatch/internal/cache"
	"github.com/zfogg/echomatch/internal/ingest"
	"github.com/zfogg/echomatch/internal/logger"
	"github.com/zfogg/echomatch/internal/match"
	"github.com/zfogg/echomatch/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockContainer is a container designed for testing.
// It allows easy overriding of dependencies with test doubles (mocks, stubs, fakes).
type MockContainer struct {
	*Container
	overrides map[string]interface{}
}

// NewMock creates a new mock container with no dependencies registered;
// tests register their doubles with the WithMock* methods.
func NewMock() *MockContainer {
	return &MockContainer{
		Container: New(),
		overrides: make(map[string]interface{}),
	}
}

// WithMockDB sets the database for testing
func (m *MockContainer) WithMockDB(db *gorm.DB) *MockContainer {
	m.SetDB(db)
	return m
}

// WithMockLogger sets a test logger
func (m *MockContainer) WithMockLogger(l *zap.Logger) *MockContainer {
	m.SetLogger(l)
	return m
}

// WithMockCache sets a mock cache
func (m *MockContainer) WithMockCache(c *cache.RedisClient) *MockContainer {
	m.SetCache(c)
	return m
}

// WithMockStore sets a test fingerprint store, typically the in-memory backend
func (m *MockContainer) WithMockStore(s store.Store) *MockContainer {
	m.SetStore(s)
	return m
}

// WithMockMatcher sets a test matcher
func (m *MockContainer) WithMockMatcher(matcher *match.Matcher) *MockContainer {
	m.SetMatcher(matcher)
	return m
}

// WithMockIngestPool sets a test ingestion pool
func (m *MockContainer) WithMockIngestPool(p *ingest.Pool) *MockContainer {
	m.SetIngestPool(p)
	return m
}

// Override sets a custom override for a specific dependency type
func (m *MockContainer) Override(key string, value interface{}) *MockContainer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[key] = value
	return m
}

// GetOverride retrieves an override if set
func (m *MockContainer) GetOverride(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.overrides[key]
	return val, ok
}

// MinimalMock creates a mock container with only the absolute minimum dependencies.
// Useful for isolated unit tests.
func MinimalMock() *MockContainer {
	mock := NewMock()
	mock.SetLogger(logger.Log)
	return mock
}

// Clean cleans up test containers after tests complete
func (m *MockContainer) Clean(ctx context.Context) error {
	return m.Cleanup(ctx)
}
