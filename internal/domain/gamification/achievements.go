package gamification

// AchievementType is the closed set of unlockable badges.
type AchievementType string

const (
	AchievementFirstTask   AchievementType = "first_task"
	AchievementComplete10  AchievementType = "complete_10"
	AchievementComplete50  AchievementType = "complete_50"
	AchievementComplete100 AchievementType = "complete_100"
	AchievementStreak3     AchievementType = "streak_3"
	AchievementStreak7     AchievementType = "streak_7"
	AchievementStreak30    AchievementType = "streak_30"
	AchievementPoints1000  AchievementType = "points_1000"
)

// Definition describes a badge and the condition that unlocks it.
type Definition struct {
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	earned      func(Stats) bool
}

func completed(n int64) func(Stats) bool {
	return func(s Stats) bool { return s.CompletedTasks >= n }
}

func streakOf(n int) func(Stats) bool {
	return func(s Stats) bool { return s.CurrentStreak >= n }
}

var catalog = []Definition{
	{AchievementFirstTask, "First Step", "Complete your first task", "sparkles", completed(1)},
	{AchievementComplete10, "Getting Things Done", "Complete 10 tasks", "check-circle", completed(10)},
	{AchievementComplete50, "Half Century", "Complete 50 tasks", "medal", completed(50)},
	{AchievementComplete100, "Centurion", "Complete 100 tasks", "trophy", completed(100)},
	{AchievementStreak3, "Warming Up", "Stay active 3 days in a row", "flame", streakOf(3)},
	{AchievementStreak7, "On Fire", "Stay active 7 days in a row", "fire", streakOf(7)},
	{AchievementStreak30, "Unstoppable", "Stay active 30 days in a row", "rocket", streakOf(30)},
	{AchievementPoints1000, "Point Collector", "Earn 1000 points", "gem", func(s Stats) bool { return s.TotalPoints >= 1000 }},
}

// Catalog lists every achievement definition in display order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

func (t AchievementType) IsValid() bool {
	for _, def := range catalog {
		if def.Type == t {
			return true
		}
	}
	return false
}

// Definition returns the catalog entry for t, or a zero value for unknown types.
func (t AchievementType) Definition() Definition {
	for _, def := range catalog {
		if def.Type == t {
			return def
		}
	}
	return Definition{Type: t, Title: string(t)}
}
