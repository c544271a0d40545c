package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_ALIASES", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.Tagging.MultilingualTags)
	assert.Equal(t, 15*time.Minute, cfg.JWT.JWTExpiresIn)

	db, ok := cfg.Database("")
	require.True(t, ok)
	assert.Equal(t, DefaultDatabaseAlias, db.Alias)
	assert.Equal(t, DriverPostgres, db.Driver)
	assert.Contains(t, db.DSN, "dbname=tagging_db")
}

func TestLoad_DatabaseAliases(t *testing.T) {
	t.Setenv("DATABASE_ALIASES", "Archive, default")
	t.Setenv("DB_ARCHIVE_DRIVER", "sqlite")
	t.Setenv("DB_ARCHIVE_NAME", "archive")

	cfg := Load()

	assert.Len(t, cfg.Databases, 2)

	db, ok := cfg.Database("archive")
	require.True(t, ok)
	assert.Equal(t, DriverSQLite, db.Driver)
	assert.Equal(t, "archive.sqlite3", db.DSN)

	_, ok = cfg.Database("missing")
	assert.False(t, ok)
}

func TestLoad_ExplicitDSNWins(t *testing.T) {
	t.Setenv("DB_DSN", "host=db user=x")

	cfg := Load()

	db, _ := cfg.Database(DefaultDatabaseAlias)
	assert.Equal(t, "host=db user=x", db.DSN)
}

func TestLoad_TaggingSwitches(t *testing.T) {
	t.Setenv("MULTILINGUAL_TAGS", "true")
	t.Setenv("DEFAULT_LANGUAGE", "de")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg := Load()

	assert.True(t, cfg.Tagging.MultilingualTags)
	assert.Equal(t, "de", cfg.Tagging.DefaultLanguage)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_BrowserSettings(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://tags.example.com")
	t.Setenv("COOKIE_SECURE", "")

	cfg := Load()

	assert.Equal(t, []string{"https://admin.example.com", "https://tags.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.CookieSecure)

	t.Setenv("COOKIE_SECURE", "false")
	assert.False(t, Load().CookieSecure)
}
