package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Progress event types
const (
	EventTypeTaskCompleted  = "task_completed"
	EventTypePointsAdjusted = "points_adjusted"
)

// ProgressEvent is published after a change to a user's points, streak or
// achievements has been committed.
type ProgressEvent struct {
	EventType     string    `json:"event_type"`
	UserID        uuid.UUID `json:"user_id"`
	EntityID      uuid.UUID `json:"entity_id"`
	Timestamp     time.Time `json:"timestamp"`
	Points        int       `json:"points"`
	TotalPoints   int64     `json:"total_points"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	Unlocked      []string  `json:"unlocked,omitempty"`
	Praise        []string  `json:"praise,omitempty"`
}

// Publisher fans progress events out to live listeners.
type Publisher interface {
	PublishProgress(ctx context.Context, event *ProgressEvent) error
}

// NopPublisher drops events; used when Redis is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishProgress(context.Context, *ProgressEvent) error { return nil }
