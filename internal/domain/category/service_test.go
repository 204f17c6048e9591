package category

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

func setup(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	db, err := connection.NewSQLiteDatabase("file::memory:?_foreign_keys=on", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &Category{}))
	t.Cleanup(func() { _ = db.Close() })

	owner := &user.User{Email: "owner@example.com"}
	require.NoError(t, db.Create(owner).Error)
	return NewService(NewRepository(db), zap.NewNop()), owner.ID
}

func strPtr(s string) *string { return &s }

func TestCreateAndListCategories(t *testing.T) {
	svc, userID := setup(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryInput{UserID: userID, Name: "  Work ", Color: strPtr("#FF8800")})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CreateCategoryInput{UserID: userID, Name: "Home"})
	require.NoError(t, err)

	list, err := svc.ListCategories(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Home", list[0].Name)
	assert.Equal(t, "Work", list[1].Name)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, userID := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateCategoryInput
	}{
		{"empty name", CreateCategoryInput{UserID: userID, Name: "   "}},
		{"name too long", CreateCategoryInput{UserID: userID, Name: string(make([]rune, 51))}},
		{"short color", CreateCategoryInput{UserID: userID, Name: "A", Color: strPtr("#FFF")}},
		{"not a color", CreateCategoryInput{UserID: userID, Name: "B", Color: strPtr("orange!")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCategory(ctx, tt.input)
			assert.True(t, apperr.IsValidation(err), "got %v", err)
		})
	}
}

func TestDuplicateCategoryName(t *testing.T) {
	svc, userID := setup(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryInput{UserID: userID, Name: "Errands"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CreateCategoryInput{UserID: userID, Name: "Errands"})
	assert.True(t, apperr.IsConstraintViolation(err), "got %v", err)
}

func TestCategoryIsScopedToOwner(t *testing.T) {
	svc, userID := setup(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CreateCategoryInput{UserID: userID, Name: "Private"})
	require.NoError(t, err)

	_, err = svc.GetCategory(ctx, uuid.New(), c.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(svc.DeleteCategory(ctx, uuid.New(), c.ID)))
}

func TestUpdateAndDeleteCategory(t *testing.T) {
	svc, userID := setup(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CreateCategoryInput{UserID: userID, Name: "Old"})
	require.NoError(t, err)

	updated, err := svc.UpdateCategory(ctx, userID, c.ID, UpdateCategoryInput{Name: strPtr("New"), Icon: strPtr("star")})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "star", *updated.Icon)

	require.NoError(t, svc.DeleteCategory(ctx, userID, c.ID))
	_, err = svc.GetCategory(ctx, userID, c.ID)
	assert.True(t, apperr.IsNotFound(err))
}
