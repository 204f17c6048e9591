package gamification

import (
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
)

// The functions in this file are pure: no I/O, no clock. Callers pass "now"
// and "today" explicitly.

// MaxAdjustment bounds a single manual ledger correction.
const MaxAdjustment = 10000

// DayOf returns the calendar date of t as seen in loc, expressed as
// midnight UTC so dates compare and persist the same everywhere.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func civil(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StreakState is the value the streak rules operate on.
type StreakState struct {
	Current    int
	Longest    int
	LastActive *time.Time
}

// AdvanceStreak applies one completion on day today:
// last active yesterday extends the streak, same day leaves it alone and
// anything else (no history, a gap, a date in the future) restarts at 1.
func AdvanceStreak(s StreakState, today time.Time) StreakState {
	today = civil(today)
	next := s

	switch {
	case s.LastActive == nil:
		next.Current = 1
	case civil(*s.LastActive).Equal(today):
		return s
	case civil(*s.LastActive).AddDate(0, 0, 1).Equal(today):
		next.Current = s.Current + 1
	default:
		next.Current = 1
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	next.LastActive = &today
	return next
}

// ActiveStreak is the streak as it stands on today without a completion:
// it only survives if the last active day is today or yesterday.
func ActiveStreak(s StreakState, today time.Time) int {
	if s.LastActive == nil {
		return 0
	}
	last := civil(*s.LastActive)
	today = civil(today)
	if last.Equal(today) || last.AddDate(0, 0, 1).Equal(today) {
		return s.Current
	}
	return 0
}

// IsFirstOfDay reports whether a completion on today is the first one that day.
func IsFirstOfDay(s StreakState, today time.Time) bool {
	return s.LastActive == nil || !civil(*s.LastActive).Equal(civil(today))
}

// NewCompletionPoint builds the ledger entry for a completed task.
func NewCompletionPoint(userID, taskID uuid.UUID, amount int, now time.Time) *Point {
	id := taskID
	return &Point{
		UserID:    userID,
		Amount:    amount,
		Reason:    ReasonTaskCompleted,
		TaskID:    &id,
		CreatedAt: now,
	}
}

// NewAdjustmentPoint builds an offsetting entry; the ledger is never edited in place.
func NewAdjustmentPoint(userID uuid.UUID, amount int, note string, now time.Time) (*Point, error) {
	if amount == 0 {
		return nil, apperr.Validation("amount", "must not be zero")
	}
	if amount > MaxAdjustment || amount < -MaxAdjustment {
		return nil, apperr.Validation("amount", "must be within ±10000")
	}
	if note == "" {
		return nil, apperr.Validation("note", "is required")
	}
	if len([]rune(note)) > 255 {
		return nil, apperr.Validation("note", "must be at most 255 characters")
	}
	return &Point{
		UserID:    userID,
		Amount:    amount,
		Reason:    ReasonAdjustment,
		Note:      &note,
		CreatedAt: now,
	}, nil
}

// Stats are the aggregates achievement predicates look at.
type Stats struct {
	CompletedTasks int64
	CurrentStreak  int
	TotalPoints    int64
}

// EvaluateAchievements returns the catalog entries whose predicate holds
// and that are not already unlocked, in catalog order.
func EvaluateAchievements(stats Stats, unlocked map[AchievementType]bool) []AchievementType {
	var earned []AchievementType
	for _, def := range catalog {
		if unlocked[def.Type] {
			continue
		}
		if def.earned(stats) {
			earned = append(earned, def.Type)
		}
	}
	return earned
}

// NewAchievement materializes an unlocked achievement row from its definition.
func NewAchievement(userID uuid.UUID, t AchievementType, now time.Time) *Achievement {
	def := t.Definition()
	return &Achievement{
		UserID:      userID,
		Type:        t,
		Title:       def.Title,
		Description: def.Description,
		Icon:        def.Icon,
		UnlockedAt:  now,
	}
}
