package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string      `json:"title" validate:"not_empty"`
	Description *string     `json:"description,omitempty"`
	Priority    string      `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	CategoryID  *uuid.UUID  `json:"category_id,omitempty"`
	TagIDs      []uuid.UUID `json:"tag_ids,omitempty" validate:"max=20"`
}

// UpdateTaskRequest changes only the fields that are present. The clear_*
// flags null out optional fields.
type UpdateTaskRequest struct {
	Title            *string    `json:"title,omitempty" validate:"omitempty,not_empty"`
	Description      *string    `json:"description,omitempty"`
	ClearDescription bool       `json:"clear_description,omitempty"`
	Priority         *string    `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	ClearDueDate     bool       `json:"clear_due_date,omitempty"`
	CategoryID       *uuid.UUID `json:"category_id,omitempty"`
	ClearCategory    bool       `json:"clear_category,omitempty"`
}

// TaskFilterRequest represents the query parameters for filtering tasks
type TaskFilterRequest struct {
	Completed  *bool      `form:"completed"`
	Priority   string     `form:"priority" validate:"omitempty,priority"`
	CategoryID string     `form:"category_id" validate:"omitempty,valid_uuid"`
	TagID      string     `form:"tag_id" validate:"omitempty,valid_uuid"`
	DueFrom    *time.Time `form:"due_from"`
	DueTo      *time.Time `form:"due_to"`
	Page       int        `form:"page" validate:"gte=0,lte=10000"`
	PageSize   int        `form:"page_size" validate:"gte=0,lte=100"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	Priority    string            `json:"priority"`
	Points      int               `json:"points"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Completed   bool              `json:"completed"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Tags        []TagResponse     `json:"tags"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks with metadata
type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// CompletionResponse is everything the client needs to celebrate a completion.
type CompletionResponse struct {
	Task                 TaskResponse          `json:"task"`
	PointsAwarded        int                   `json:"points_awarded"`
	TotalPoints          int64                 `json:"total_points"`
	CurrentStreak        int                   `json:"current_streak"`
	LongestStreak        int                   `json:"longest_streak"`
	FirstOfDay           bool                  `json:"first_of_day"`
	UnlockedAchievements []AchievementResponse `json:"unlocked_achievements"`
	Praise               []PraiseResponse      `json:"praise"`
}

type PraiseResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type SubtaskRequest struct {
	Title string `json:"title" validate:"not_empty"`
}

type SubtaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      uuid.UUID  `json:"task_id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
}

type NoteRequest struct {
	Content string `json:"content" validate:"not_empty"`
}

type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
