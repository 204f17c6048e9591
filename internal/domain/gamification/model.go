package gamification

import (
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"gorm.io/gorm"
)

// PointReason is the closed set of ledger entry causes.
type PointReason string

const (
	ReasonTaskCompleted PointReason = "task_completed"
	ReasonAdjustment    PointReason = "adjustment"
)

func (r PointReason) IsValid() bool {
	switch r {
	case ReasonTaskCompleted, ReasonAdjustment:
		return true
	}
	return false
}

// Point is one append-only ledger entry. TaskID is a plain column so the
// ledger survives task deletion.
type Point struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index:idx_points_user_created,priority:1"`
	User      *user.User  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Amount    int         `json:"amount" gorm:"not null"`
	Reason    PointReason `json:"reason" gorm:"type:varchar(20);not null"`
	TaskID    *uuid.UUID  `json:"task_id,omitempty" gorm:"type:uuid;index"`
	Note      *string     `json:"note,omitempty" gorm:"size:255"`
	CreatedAt time.Time   `json:"created_at" gorm:"not null;index:idx_points_user_created,priority:2"`
}

func (Point) TableName() string {
	return "points"
}

func (p *Point) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Streak tracks consecutive active calendar days, one row per user.
type Streak struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_streak_user"`
	User           *user.User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CurrentStreak  int        `json:"current_streak" gorm:"not null"`
	LongestStreak  int        `json:"longest_streak" gorm:"not null"`
	LastActiveDate *time.Time `json:"last_active_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"not null"`
}

func (Streak) TableName() string {
	return "streaks"
}

func (s *Streak) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// State projects the row onto the engine's value type.
func (s *Streak) State() StreakState {
	return StreakState{Current: s.CurrentStreak, Longest: s.LongestStreak, LastActive: s.LastActiveDate}
}

// Apply copies an engine result back onto the row.
func (s *Streak) Apply(state StreakState, now time.Time) {
	s.CurrentStreak = state.Current
	s.LongestStreak = state.Longest
	s.LastActiveDate = state.LastActive
	s.UpdatedAt = now
}

// NewStreak returns the empty streak a user starts with.
func NewStreak(userID uuid.UUID, now time.Time) *Streak {
	return &Streak{UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// Achievement is an unlocked badge; (user, type) is unique.
type Achievement struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_achievement_user_type,priority:1"`
	User        *user.User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Type        AchievementType `json:"type" gorm:"type:varchar(30);not null;uniqueIndex:idx_achievement_user_type,priority:2"`
	Title       string          `json:"title" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"size:255"`
	Icon        string          `json:"icon" gorm:"size:50"`
	UnlockedAt  time.Time       `json:"unlocked_at" gorm:"not null"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Progress is the read model served to clients and cached in Redis.
type Progress struct {
	UserID         uuid.UUID     `json:"user_id"`
	TotalPoints    int64         `json:"total_points"`
	CompletedTasks int64         `json:"completed_tasks"`
	CurrentStreak  int           `json:"current_streak"`
	ActiveStreak   int           `json:"active_streak"`
	LongestStreak  int           `json:"longest_streak"`
	LastActiveDate *time.Time    `json:"last_active_date,omitempty"`
	Achievements   []Achievement `json:"achievements"`
}
