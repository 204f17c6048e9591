package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateSettings(ctx context.Context, settings *Settings) error
	FindSettings(ctx context.Context, userID uuid.UUID) (*Settings, error)
	UpdateSettings(ctx context.Context, settings *Settings) error
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

func (r *repository) Create(ctx context.Context, user *User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ConstraintViolation("user already registered", err)
	}
	return apperr.FromDB("create user", "user", err)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user", id)
		}
		return nil, apperr.FromDB("find user", "user", err)
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, apperr.FromDB("find user by email", "user", err)
	}
	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	result := r.db.WithContext(ctx).Save(user)
	if result.Error != nil {
		return apperr.FromDB("update user", "user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user", user.ID)
	}
	return nil
}

// Delete removes the user; the database cascades to every owned row.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return apperr.FromDB("delete user", "user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

func (r *repository) CreateSettings(ctx context.Context, settings *Settings) error {
	return apperr.FromDB("create settings", "settings", r.db.WithContext(ctx).Create(settings).Error)
}

func (r *repository) FindSettings(ctx context.Context, userID uuid.UUID) (*Settings, error) {
	var settings Settings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if err != nil {
		return nil, apperr.FromDB("find settings", "settings", err)
	}
	return &settings, nil
}

func (r *repository) UpdateSettings(ctx context.Context, settings *Settings) error {
	result := r.db.WithContext(ctx).Save(settings)
	if result.Error != nil {
		return apperr.FromDB("update settings", "settings", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("settings", settings.ID)
	}
	return nil
}
