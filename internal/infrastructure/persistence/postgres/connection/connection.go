package connection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goto-masaaki-dm/praise-todo/pkg/config"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the gorm handle shared by every repository. Inside
// InTransaction the same type wraps the transaction.
type Database struct {
	*gorm.DB
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Open connects using the configured driver.
func Open(cfg *config.Config) (*Database, error) {
	debug := cfg.Server.Mode != "production"
	if cfg.Database.Driver == config.DriverSQLite {
		return NewSQLiteDatabase(cfg.Database.DSN(), debug)
	}
	return NewDatabase(cfg, debug)
}

func NewDatabase(cfg *config.Config, debug bool) (*Database, error) {
	dsn := cfg.Database.DSN()

	// First try to establish a basic SQL connection to verify connectivity
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create sql.DB: %w", err)
	}
	defer sqlDB.Close()

	sqlDB.SetConnMaxLifetime(10 * time.Second)
	if err := sqlDB.Ping(); err != nil {
		if sqlErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("postgres error: code=%s, message=%s, detail=%s", sqlErr.Code, sqlErr.Message, sqlErr.Detail)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database with GORM: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}

	maxIdleConns := 10
	maxOpenConns := 100
	lifetime := time.Hour
	if cfg.Database.MaxIdleConns > 0 {
		maxIdleConns = cfg.Database.MaxIdleConns
	}
	if cfg.Database.MaxOpenConns > 0 {
		maxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		lifetime = cfg.Database.ConnMaxLifetime
	}
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetConnMaxLifetime(lifetime)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping connection pool: %w", err)
	}

	return &Database{DB: db}, nil
}

// NewSQLiteDatabase opens a SQLite database with foreign keys enforced.
// SQLite allows a single writer, so the pool is pinned to one connection.
func NewSQLiteDatabase(dsn string, debug bool) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	pool.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Database{DB: db}, nil
}

// InTransaction runs fn inside a single database transaction. Returning an
// error from fn rolls back every write made through tx.
func (db *Database) InTransaction(ctx context.Context, fn func(tx *Database) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{DB: tx})
	})
}

// Ping checks that the underlying pool is reachable.
func (db *Database) Ping(ctx context.Context) error {
	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Close releases the pool.
func (db *Database) Close() error {
	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}
