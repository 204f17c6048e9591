package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (Service, *connection.Database) {
	t.Helper()
	db, err := connection.NewSQLiteDatabase("file::memory:?_foreign_keys=on", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Settings{}))
	t.Cleanup(func() { _ = db.Close() })

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(db, NewRepository(db), zap.NewNop(), opts...), db
}

type failingProvisioner struct{}

func (failingProvisioner) ProvisionAccount(context.Context, *connection.Database, uuid.UUID, time.Time) error {
	return errors.New("provisioning failed")
}

func TestRegisterCreatesDefaultSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "  Ada@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, fixedNow, u.CreatedAt)

	settings, err := svc.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, ThemeSystem, settings.Theme)
	assert.True(t, settings.PraiseOnComplete)
	assert.True(t, settings.PraiseOnFirstOfDay)
	assert.True(t, settings.AnimationEnabled)
}

func TestRegisterKeepsIdentityProviderID(t *testing.T) {
	svc, _ := newTestService(t)
	id := uuid.New()

	u, err := svc.Register(context.Background(), RegisterInput{ID: id, Email: "grace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	long := string(make([]rune, 101))

	_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email"})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Register(context.Background(), RegisterInput{Email: "ok@example.com", Name: &long})
	assert.True(t, apperr.IsValidation(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "DUP@example.com"})
	assert.True(t, apperr.IsConstraintViolation(err), "got %v", err)
}

func TestRegisterRollsBackWhenProvisionerFails(t *testing.T) {
	svc, db := newTestService(t, WithProvisioners(failingProvisioner{}))

	_, err := svc.Register(context.Background(), RegisterInput{Email: "rollback@example.com"})
	require.Error(t, err)

	var users, settings int64
	require.NoError(t, db.Model(&User{}).Count(&users).Error)
	require.NoError(t, db.Model(&Settings{}).Count(&settings).Error)
	assert.Zero(t, users)
	assert.Zero(t, settings)
}

func TestUpdateSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Email: "toggles@example.com"})
	require.NoError(t, err)

	off := false
	dark := ThemeDark
	settings, err := svc.UpdateSettings(ctx, u.ID, UpdateSettingsInput{Theme: &dark, PraiseOnStreak: &off})
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, settings.Theme)
	assert.False(t, settings.PraiseOnStreak)
	assert.True(t, settings.PraiseOnComplete)

	reloaded, err := svc.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.PraiseOnStreak)

	bogus := Theme("NEON")
	_, err = svc.UpdateSettings(ctx, u.ID, UpdateSettingsInput{Theme: &bogus})
	assert.True(t, apperr.IsValidation(err))
}

func TestDeleteUserCascadesSettings(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Email: "gone@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))

	var settings int64
	require.NoError(t, db.Model(&Settings{}).Where("user_id = ?", u.ID).Count(&settings).Error)
	assert.Zero(t, settings)

	_, err = svc.GetUser(ctx, u.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(svc.DeleteUser(ctx, u.ID)))
}
