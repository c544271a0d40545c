package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tagging/internal/shared/config"
	"tagging/pkg/cache"
	applogger "tagging/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds database connections
type DB struct {
	Alias string
	SQL   *gorm.DB
	Redis *redis.Client
}

// InitDB opens the default database, migrates it and connects Redis when enabled
func InitDB(ctx context.Context, cfg *config.Config) (*DB, error) {
	sqlDB, err := Open(ctx, cfg, config.DefaultDatabaseAlias)
	if err != nil {
		return nil, err
	}
	if err := Migrate(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db := &DB{
		Alias: config.DefaultDatabaseAlias,
		SQL:   sqlDB,
	}

	if cfg.Redis.Enabled {
		rdb, err := ConnectRedis(ctx, cfg)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		db.Redis = rdb
	}

	return db, nil
}

// ConnectRedis connects the tag cache client
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb, err := cache.NewClient(ctx, cache.NewConfigFromRedisConfig(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Addr:     cfg.Redis.Addr,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	applogger.GetDefault().Info("Redis connected successfully")
	return rdb, nil
}

// Open connects to the database registered under alias
func Open(ctx context.Context, cfg *config.Config, alias string) (*gorm.DB, error) {
	dbCfg, ok := cfg.Database(alias)
	if !ok {
		return nil, fmt.Errorf("unknown database alias %q", alias)
	}

	gormConfig := newGormConfig(cfg.IsDevelopment())

	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(dbCfg.Driver) {
	case config.DriverPostgres, "":
		db, err = gorm.Open(postgres.Open(dbCfg.DSN), gormConfig)
	case config.DriverSQLite:
		db, err = openSQLite(dbCfg.DSN, gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q for alias %q", dbCfg.Driver, alias)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %q: %w", alias, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	if dbCfg.Driver != config.DriverSQLite {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database %q: %w", alias, err)
	}

	applogger.GetDefault().Info("Database connected successfully",
		"alias", alias,
		"driver", dbCfg.Driver,
	)
	return db, nil
}

func newGormConfig(development bool) *gorm.Config {
	return &gorm.Config{
		Logger: newQueryLogger(applogger.GetDefault(), development),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func openSQLite(dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases alive
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// OpenSQLite opens and migrates a SQLite database, ":memory:" included
func OpenSQLite(dsn string) (*gorm.DB, error) {
	gormConfig := newGormConfig(false)
	gormConfig.Logger = gormConfig.Logger.LogMode(logger.Silent)

	db, err := openSQLite(dsn, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Close closes all database connections
func (db *DB) Close() error {
	var errs []error

	if db.SQL != nil {
		if sqlDB, err := db.SQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database: %w", err))
			}
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing databases: %v", errs)
	}
	return nil
}

// HealthCheck performs health checks on all database connections
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}

	return nil
}

// CacheService returns a cache over the Redis connection, or nil without Redis
func (db *DB) CacheService() cache.Service {
	if db.Redis == nil {
		return nil
	}
	return cache.NewService(db.Redis)
}
