package migrations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestAutoMigrateCreatesSchema(t *testing.T) {
	db, err := connection.NewSQLiteDatabase("file::memory:?_foreign_keys=on", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, AutoMigrate(db, zap.NewNop()))

	for _, table := range []string{
		"users", "user_settings", "categories", "tags", "tasks", "task_tags",
		"subtasks", "task_notes", "streaks", "achievements", "points", "schema_migrations",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	history, err := GetMigrationHistory(db)
	require.NoError(t, err)
	require.Len(t, history, len(Models()))
	assert.Equal(t, "*user.User", history[0].Name)
	assert.Equal(t, 1, history[0].Version)
	assert.Equal(t, len(Models()), history[len(history)-1].Version)
}

// notFoundCounter counts queries that gorm reports as record-not-found.
type notFoundCounter struct {
	gormlogger.Interface
	count int
}

func (l *notFoundCounter) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *notFoundCounter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.count++
	}
}

func TestAutoMigrateIsQuietAndIdempotent(t *testing.T) {
	db, err := connection.NewSQLiteDatabase("file::memory:?_foreign_keys=on", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	counter := &notFoundCounter{Interface: gormlogger.Discard}
	quiet := &connection.Database{DB: db.Session(&gorm.Session{Logger: counter})}

	require.NoError(t, AutoMigrate(quiet, zap.NewNop()))
	require.NoError(t, AutoMigrate(quiet, zap.NewNop()))
	assert.Zero(t, counter.count)

	history, err := GetMigrationHistory(db)
	require.NoError(t, err)
	assert.Len(t, history, len(Models()))
}
