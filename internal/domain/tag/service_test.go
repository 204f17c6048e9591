package tag

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTagLifecycle(t *testing.T) {
	db, err := connection.NewSQLiteDatabase("file::memory:?_foreign_keys=on", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &Tag{}))
	defer db.Close()

	owner := &user.User{Email: "tagger@example.com"}
	require.NoError(t, db.Create(owner).Error)

	svc := NewService(NewRepository(db), zap.NewNop())
	ctx := context.Background()

	urgent, err := svc.CreateTag(ctx, CreateTagInput{UserID: owner.ID, Name: "urgent"})
	require.NoError(t, err)

	_, err = svc.CreateTag(ctx, CreateTagInput{UserID: owner.ID, Name: "urgent"})
	assert.True(t, apperr.IsConstraintViolation(err), "got %v", err)

	_, err = svc.CreateTag(ctx, CreateTagInput{UserID: owner.ID, Name: ""})
	assert.True(t, apperr.IsValidation(err))

	color := "#00AA00"
	renamed, err := svc.UpdateTag(ctx, owner.ID, urgent.ID, UpdateTagInput{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#00AA00", *renamed.Color)

	_, err = svc.GetTag(ctx, uuid.New(), urgent.ID)
	assert.True(t, apperr.IsNotFound(err))

	tags, err := svc.ListTags(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	require.NoError(t, svc.DeleteTag(ctx, owner.ID, urgent.ID))
	assert.True(t, apperr.IsNotFound(svc.DeleteTag(ctx, owner.ID, urgent.ID)))
}
