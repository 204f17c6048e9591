package tag

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, tag *Tag) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Tag, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Tag, error)
	Update(ctx context.Context, tag *Tag) error
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

func (r *repository) Create(ctx context.Context, tag *Tag) error {
	err := r.db.WithContext(ctx).Create(tag).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ConstraintViolation("tag name already used", err)
	}
	return apperr.FromDB("create tag", "tag", err)
}

func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*Tag, error) {
	var tag Tag
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tag", id)
		}
		return nil, apperr.FromDB("find tag", "tag", err)
	}
	return &tag, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]Tag, error) {
	var tags []Tag
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, apperr.FromDB("list tags", "tag", err)
	}
	return tags, nil
}

func (r *repository) Update(ctx context.Context, tag *Tag) error {
	result := r.db.WithContext(ctx).Save(tag)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return apperr.ConstraintViolation("tag name already used", result.Error)
	}
	if result.Error != nil {
		return apperr.FromDB("update tag", "tag", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("tag", tag.ID)
	}
	return nil
}

// Delete removes the tag; task_tags rows go with it.
func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Tag{})
	if result.Error != nil {
		return apperr.FromDB("delete tag", "tag", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("tag", id)
	}
	return nil
}
