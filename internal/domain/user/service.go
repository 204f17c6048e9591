package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"go.uber.org/zap"
)

// AccountProvisioner creates rows owned by other packages when a user
// registers. It runs inside the registration transaction.
type AccountProvisioner interface {
	ProvisionAccount(ctx context.Context, tx *connection.Database, userID uuid.UUID, now time.Time) error
}

type RegisterInput struct {
	ID        uuid.UUID
	Email     string
	Name      *string
	AvatarURL *string
}

type UpdateProfileInput struct {
	Name      *string
	AvatarURL *string
}

type UpdateSettingsInput struct {
	Theme               *Theme
	PraiseOnComplete    *bool
	PraiseOnStreak      *bool
	PraiseOnAchievement *bool
	PraiseOnEarlyFinish *bool
	PraiseOnUrgent      *bool
	PraiseOnFirstOfDay  *bool
	AnimationEnabled    *bool
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetSettings(ctx context.Context, userID uuid.UUID) (*Settings, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, input UpdateSettingsInput) (*Settings, error)
}

type Option func(*service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithProvisioners registers hooks that run when an account is created.
func WithProvisioners(p ...AccountProvisioner) Option {
	return func(s *service) { s.provisioners = append(s.provisioners, p...) }
}

type service struct {
	db           *connection.Database
	repo         Repository
	provisioners []AccountProvisioner
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(db *connection.Database, repo Repository, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		db:     db,
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores the profile, default settings and whatever the
// provisioners add, all or nothing.
func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	now := s.now()
	u := &User{
		ID:        input.ID,
		Email:     email,
		Name:      input.Name,
		AvatarURL: input.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.InTransaction(ctx, func(tx *connection.Database) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, u); err != nil {
			return err
		}
		if err := repo.CreateSettings(ctx, DefaultSettings(u.ID, now)); err != nil {
			return err
		}
		for _, p := range s.provisioners {
			if err := p.ProvisionAccount(ctx, tx, u.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", u.ID.String()))
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.Name != nil {
		if err := validateName(input.Name); err != nil {
			return nil, err
		}
		u.Name = input.Name
		changed = true
	}
	if input.AvatarURL != nil {
		u.AvatarURL = input.AvatarURL
		changed = true
	}
	if !changed {
		return u, nil
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *service) GetSettings(ctx context.Context, userID uuid.UUID) (*Settings, error) {
	settings, err := s.repo.FindSettings(ctx, userID)
	if apperr.IsNotFound(err) {
		return nil, apperr.NotFound("settings", userID)
	}
	return settings, err
}

func (s *service) UpdateSettings(ctx context.Context, userID uuid.UUID, input UpdateSettingsInput) (*Settings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Theme != nil {
		if !input.Theme.IsValid() {
			return nil, apperr.Validation("theme", "must be LIGHT, DARK or SYSTEM")
		}
		settings.Theme = *input.Theme
	}
	toggles := []struct {
		in  *bool
		out *bool
	}{
		{input.PraiseOnComplete, &settings.PraiseOnComplete},
		{input.PraiseOnStreak, &settings.PraiseOnStreak},
		{input.PraiseOnAchievement, &settings.PraiseOnAchievement},
		{input.PraiseOnEarlyFinish, &settings.PraiseOnEarlyFinish},
		{input.PraiseOnUrgent, &settings.PraiseOnUrgent},
		{input.PraiseOnFirstOfDay, &settings.PraiseOnFirstOfDay},
		{input.AnimationEnabled, &settings.AnimationEnabled},
	}
	for _, t := range toggles {
		if t.in != nil {
			*t.out = *t.in
		}
	}

	settings.UpdatedAt = s.now()
	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
