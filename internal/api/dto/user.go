package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterUserRequest creates the profile for the identity in the token.
// Email falls back to the token's email claim.
type RegisterUserRequest struct {
	Email     string  `json:"email,omitempty" validate:"omitempty,email"`
	Name      *string `json:"name,omitempty" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=500"`
}

type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=500"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateSettingsRequest struct {
	Theme               *string `json:"theme,omitempty" validate:"omitempty,oneof=LIGHT DARK SYSTEM"`
	PraiseOnComplete    *bool   `json:"praise_on_complete,omitempty"`
	PraiseOnStreak      *bool   `json:"praise_on_streak,omitempty"`
	PraiseOnAchievement *bool   `json:"praise_on_achievement,omitempty"`
	PraiseOnEarlyFinish *bool   `json:"praise_on_early_finish,omitempty"`
	PraiseOnUrgent      *bool   `json:"praise_on_urgent,omitempty"`
	PraiseOnFirstOfDay  *bool   `json:"praise_on_first_of_day,omitempty"`
	AnimationEnabled    *bool   `json:"animation_enabled,omitempty"`
}

type SettingsResponse struct {
	Theme               string    `json:"theme"`
	PraiseOnComplete    bool      `json:"praise_on_complete"`
	PraiseOnStreak      bool      `json:"praise_on_streak"`
	PraiseOnAchievement bool      `json:"praise_on_achievement"`
	PraiseOnEarlyFinish bool      `json:"praise_on_early_finish"`
	PraiseOnUrgent      bool      `json:"praise_on_urgent"`
	PraiseOnFirstOfDay  bool      `json:"praise_on_first_of_day"`
	AnimationEnabled    bool      `json:"animation_enabled"`
	UpdatedAt           time.Time `json:"updated_at"`
}
