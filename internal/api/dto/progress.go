package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProgressResponse struct {
	TotalPoints    int64                 `json:"total_points"`
	CompletedTasks int64                 `json:"completed_tasks"`
	CurrentStreak  int                   `json:"current_streak"`
	LongestStreak  int                   `json:"longest_streak"`
	LastActiveDate *time.Time            `json:"last_active_date,omitempty"`
	Achievements   []AchievementResponse `json:"achievements"`
}

type AchievementResponse struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// AchievementDefinitionResponse is one catalog entry, unlocked or not.
type AchievementDefinitionResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type PointResponse struct {
	ID        uuid.UUID  `json:"id"`
	Amount    int        `json:"amount"`
	Reason    string     `json:"reason"`
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	Note      *string    `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type PointListResponse struct {
	Points     []PointResponse `json:"points"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

type PageRequest struct {
	Page     int `form:"page" validate:"gte=0,lte=10000"`
	PageSize int `form:"page_size" validate:"gte=0,lte=100"`
}

type AdjustPointsRequest struct {
	Amount int    `json:"amount" validate:"ne=0"`
	Note   string `json:"note" validate:"not_empty,max=255"`
}
