package tag

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTagInput struct {
	UserID uuid.UUID
	Name   string
	Color  *string
}

type UpdateTagInput struct {
	Name  *string
	Color *string
}

type Service interface {
	CreateTag(ctx context.Context, input CreateTagInput) (*Tag, error)
	GetTag(ctx context.Context, userID, id uuid.UUID) (*Tag, error)
	ListTags(ctx context.Context, userID uuid.UUID) ([]Tag, error)
	UpdateTag(ctx context.Context, userID, id uuid.UUID, input UpdateTagInput) (*Tag, error)
	DeleteTag(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) CreateTag(ctx context.Context, input CreateTagInput) (*Tag, error) {
	now := s.now()
	t := &Tag{UserID: input.UserID, Name: input.Name, Color: input.Color, CreatedAt: now, UpdatedAt: now}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetTag(ctx context.Context, userID, id uuid.UUID) (*Tag, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *service) ListTags(ctx context.Context, userID uuid.UUID) ([]Tag, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *service) UpdateTag(ctx context.Context, userID, id uuid.UUID, input UpdateTagInput) (*Tag, error) {
	t, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if input.Name == nil && input.Color == nil {
		return t, nil
	}
	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Color != nil {
		t.Color = input.Color
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) DeleteTag(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}
