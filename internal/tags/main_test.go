package tags

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tagging/internal/shared/config"
	"tagging/internal/tagevents"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func testTaggingConfig() config.TaggingConfig {
	return config.TaggingConfig{
		DefaultLanguage: "en",
		MaxTagLength:    100,
	}
}

// mustTag creates a tag whose own name is registered as a synonym
func mustTag(t *testing.T, repo Repository, name string, synonyms ...string) *Tag {
	t.Helper()
	tag := &Tag{Name: name}
	require.NoError(t, repo.CreateWithSynonyms(context.Background(), tag, synonyms))
	return tag
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *mockCache) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event *tagevents.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func ids(tags ...*Tag) []uuid.UUID {
	out := make([]uuid.UUID, len(tags))
	for i, tag := range tags {
		out[i] = tag.ID
	}
	return out
}
