package category

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	WithTx(tx *connection.Database) Repository
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *connection.Database) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ConstraintViolation("category name already used", err)
	}
	return apperr.FromDB("create category", "category", err)
}

// FindByID only returns categories owned by userID.
func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	var category Category
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category", id)
		}
		return nil, apperr.FromDB("find category", "category", err)
	}
	return &category, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	var categories []Category
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, apperr.FromDB("list categories", "category", err)
	}
	return categories, nil
}

func (r *repository) Update(ctx context.Context, category *Category) error {
	result := r.db.WithContext(ctx).Save(category)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return apperr.ConstraintViolation("category name already used", result.Error)
	}
	if result.Error != nil {
		return apperr.FromDB("update category", "category", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("category", category.ID)
	}
	return nil
}

// Delete relies on ON DELETE SET NULL to detach the category's tasks.
func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Category{})
	if result.Error != nil {
		return apperr.FromDB("delete category", "category", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("category", id)
	}
	return nil
}
