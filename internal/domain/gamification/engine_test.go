package gamification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func TestAdvanceStreak(t *testing.T) {
	tests := []struct {
		name    string
		state   StreakState
		today   time.Time
		current int
		longest int
	}{
		{"first completion ever", StreakState{}, day(2024, 1, 1), 1, 1},
		{"consecutive day", StreakState{1, 1, dayPtr(2024, 1, 1)}, day(2024, 1, 2), 2, 2},
		{"same day", StreakState{2, 2, dayPtr(2024, 1, 2)}, day(2024, 1, 2), 2, 2},
		{"gap resets", StreakState{2, 2, dayPtr(2024, 1, 2)}, day(2024, 1, 5), 1, 2},
		{"longest kept after reset", StreakState{3, 9, dayPtr(2024, 1, 2)}, day(2024, 1, 4), 1, 9},
		{"extend past longest", StreakState{9, 9, dayPtr(2024, 2, 28)}, day(2024, 2, 29), 10, 10},
		{"month boundary", StreakState{4, 6, dayPtr(2024, 1, 31)}, day(2024, 2, 1), 5, 6},
		{"year boundary", StreakState{1, 1, dayPtr(2023, 12, 31)}, day(2024, 1, 1), 2, 2},
		{"last active in the future", StreakState{5, 5, dayPtr(2024, 1, 10)}, day(2024, 1, 3), 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := AdvanceStreak(tt.state, tt.today)
			assert.Equal(t, tt.current, next.Current)
			assert.Equal(t, tt.longest, next.Longest)
			require.NotNil(t, next.LastActive)
			if tt.name == "same day" {
				assert.Equal(t, *tt.state.LastActive, *next.LastActive)
			} else {
				assert.Equal(t, tt.today, *next.LastActive)
			}
			assert.GreaterOrEqual(t, next.Longest, next.Current)
		})
	}
}

func TestAdvanceStreakIgnoresTimeOfDay(t *testing.T) {
	s := AdvanceStreak(StreakState{}, time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	s = AdvanceStreak(s, time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC))
	assert.Equal(t, 2, s.Current)
	assert.Equal(t, day(2024, 1, 2), *s.LastActive)
}

func TestDayOf(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	instant := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2024, 1, 1), DayOf(instant, time.UTC))
	assert.Equal(t, day(2024, 1, 2), DayOf(instant, tokyo))
	assert.Equal(t, day(2024, 1, 1), DayOf(instant, nil))
}

func TestActiveStreak(t *testing.T) {
	s := StreakState{Current: 4, Longest: 4, LastActive: dayPtr(2024, 1, 10)}

	assert.Equal(t, 4, ActiveStreak(s, day(2024, 1, 10)))
	assert.Equal(t, 4, ActiveStreak(s, day(2024, 1, 11)))
	assert.Equal(t, 0, ActiveStreak(s, day(2024, 1, 12)))
	assert.Equal(t, 0, ActiveStreak(StreakState{}, day(2024, 1, 12)))
}

func TestIsFirstOfDay(t *testing.T) {
	assert.True(t, IsFirstOfDay(StreakState{}, day(2024, 1, 1)))
	assert.True(t, IsFirstOfDay(StreakState{LastActive: dayPtr(2023, 12, 31)}, day(2024, 1, 1)))
	assert.False(t, IsFirstOfDay(StreakState{LastActive: dayPtr(2024, 1, 1)}, time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)))
}

func TestEvaluateAchievements(t *testing.T) {
	tests := []struct {
		name     string
		stats    Stats
		unlocked map[AchievementType]bool
		want     []AchievementType
	}{
		{"nothing yet", Stats{}, nil, nil},
		{"first task", Stats{CompletedTasks: 1, CurrentStreak: 1, TotalPoints: 20}, nil, []AchievementType{AchievementFirstTask}},
		{
			"already unlocked is skipped",
			Stats{CompletedTasks: 2, CurrentStreak: 2, TotalPoints: 50},
			map[AchievementType]bool{AchievementFirstTask: true},
			nil,
		},
		{
			"several at once in catalog order",
			Stats{CompletedTasks: 10, CurrentStreak: 3, TotalPoints: 1000},
			map[AchievementType]bool{AchievementFirstTask: true},
			[]AchievementType{AchievementComplete10, AchievementStreak3, AchievementPoints1000},
		},
		{
			"long streak",
			Stats{CompletedTasks: 30, CurrentStreak: 30, TotalPoints: 600},
			map[AchievementType]bool{AchievementFirstTask: true, AchievementComplete10: true},
			[]AchievementType{AchievementStreak3, AchievementStreak7, AchievementStreak30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateAchievements(tt.stats, tt.unlocked))
		})
	}
}

func TestNewAdjustmentPoint(t *testing.T) {
	userID := uuid.New()
	now := day(2024, 1, 1)

	p, err := NewAdjustmentPoint(userID, -30, "duplicate completion", now)
	require.NoError(t, err)
	assert.Equal(t, ReasonAdjustment, p.Reason)
	assert.Equal(t, -30, p.Amount)
	assert.Nil(t, p.TaskID)

	invalid := []struct {
		amount int
		note   string
	}{
		{0, "zero"},
		{MaxAdjustment + 1, "too large"},
		{-MaxAdjustment - 1, "too small"},
		{5, ""},
		{5, string(make([]rune, 256))},
	}
	for _, in := range invalid {
		_, err := NewAdjustmentPoint(userID, in.amount, in.note, now)
		assert.True(t, apperr.IsValidation(err), "amount=%d", in.amount)
	}
}

func TestNewCompletionPoint(t *testing.T) {
	userID, taskID := uuid.New(), uuid.New()
	p := NewCompletionPoint(userID, taskID, 30, day(2024, 1, 2))

	assert.Equal(t, ReasonTaskCompleted, p.Reason)
	assert.Equal(t, 30, p.Amount)
	require.NotNil(t, p.TaskID)
	assert.Equal(t, taskID, *p.TaskID)
}

func TestAchievementDefinition(t *testing.T) {
	assert.True(t, AchievementStreak7.IsValid())
	assert.False(t, AchievementType("nope").IsValid())
	assert.Equal(t, "First Step", AchievementFirstTask.Definition().Title)
	assert.Len(t, Catalog(), 8)
}

func TestPraise(t *testing.T) {
	all := PraiseToggles{true, true, true, true, true, true}
	outcome := CompletionOutcome{
		Points:        50,
		Urgent:        true,
		FinishedEarly: true,
		FirstOfDay:    true,
		StreakBefore:  2,
		StreakAfter:   3,
		Unlocked:      []AchievementType{AchievementStreak3},
	}

	msgs := Praise(outcome, all)
	kinds := make([]PraiseKind, len(msgs))
	for i, m := range msgs {
		kinds[i] = m.Kind
	}
	assert.Equal(t, []PraiseKind{
		PraiseTaskCompleted, PraiseUrgent, PraiseEarlyFinish, PraiseFirstOfDay, PraiseStreak, PraiseAchievement,
	}, kinds)
	assert.Contains(t, msgs[0].Message, "+50")
	assert.Contains(t, msgs[5].Message, "Warming Up")

	assert.Empty(t, Praise(outcome, PraiseToggles{}))

	// A streak of one is not worth celebrating, nor is an unchanged streak.
	assert.Empty(t, Praise(CompletionOutcome{StreakBefore: 0, StreakAfter: 1}, PraiseToggles{OnStreak: true}))
	assert.Empty(t, Praise(CompletionOutcome{StreakBefore: 4, StreakAfter: 4}, PraiseToggles{OnStreak: true}))
}
