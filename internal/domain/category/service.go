package category

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateCategoryInput struct {
	UserID      uuid.UUID
	Name        string
	Color       *string
	Icon        *string
	Description *string
}

type UpdateCategoryInput struct {
	Name        *string
	Color       *string
	Icon        *string
	Description *string
}

type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error)
	GetCategory(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error)
	UpdateCategory(ctx context.Context, userID, id uuid.UUID, input UpdateCategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	now := s.now()
	c := &Category{
		UserID:      input.UserID,
		Name:        input.Name,
		Color:       input.Color,
		Icon:        input.Icon,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetCategory(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *service) ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *service) UpdateCategory(ctx context.Context, userID, id uuid.UUID, input UpdateCategoryInput) (*Category, error) {
	c, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.Name != nil {
		c.Name = strings.TrimSpace(*input.Name)
		changed = true
	}
	if input.Color != nil {
		c.Color = input.Color
		changed = true
	}
	if input.Icon != nil {
		c.Icon = input.Icon
		changed = true
	}
	if input.Description != nil {
		c.Description = input.Description
		changed = true
	}
	if !changed {
		return c, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}
