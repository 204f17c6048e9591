package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"gorm.io/gorm"
)

var validate = validator.New()

// User is the owner of every other record. Identity (login, tokens) lives
// with the external identity provider; this row only carries the profile.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex:idx_user_email"`
	Name      *string   `json:"name,omitempty" gorm:"size:100"`
	AvatarURL *string   `json:"avatar_url,omitempty" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is called before creating a new user record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	return nil
}

// NormalizeEmail lower-cases and validates an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return "", apperr.Validation("email", "must be a valid address")
	}
	return email, nil
}

func validateName(name *string) error {
	if name != nil && len([]rune(*name)) > 100 {
		return apperr.Validation("name", "must be at most 100 characters")
	}
	return nil
}

// Theme is the UI theme stored with the user's settings.
type Theme string

const (
	ThemeLight  Theme = "LIGHT"
	ThemeDark   Theme = "DARK"
	ThemeSystem Theme = "SYSTEM"
)

func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Settings holds per-user preferences, one row per user.
type Settings struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID              uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_settings_user"`
	User                *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Theme               Theme     `json:"theme" gorm:"type:varchar(10);not null"`
	PraiseOnComplete    bool      `json:"praise_on_complete" gorm:"not null"`
	PraiseOnStreak      bool      `json:"praise_on_streak" gorm:"not null"`
	PraiseOnAchievement bool      `json:"praise_on_achievement" gorm:"not null"`
	PraiseOnEarlyFinish bool      `json:"praise_on_early_finish" gorm:"not null"`
	PraiseOnUrgent      bool      `json:"praise_on_urgent" gorm:"not null"`
	PraiseOnFirstOfDay  bool      `json:"praise_on_first_of_day" gorm:"not null"`
	AnimationEnabled    bool      `json:"animation_enabled" gorm:"not null"`
	CreatedAt           time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"not null"`
}

func (Settings) TableName() string {
	return "user_settings"
}

func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	return nil
}

// DefaultSettings enables every praise toggle and animations.
func DefaultSettings(userID uuid.UUID, now time.Time) *Settings {
	return &Settings{
		UserID:              userID,
		Theme:               ThemeSystem,
		PraiseOnComplete:    true,
		PraiseOnStreak:      true,
		PraiseOnAchievement: true,
		PraiseOnEarlyFinish: true,
		PraiseOnUrgent:      true,
		PraiseOnFirstOfDay:  true,
		AnimationEnabled:    true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
