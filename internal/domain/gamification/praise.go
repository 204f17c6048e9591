package gamification

import "fmt"

type PraiseKind string

const (
	PraiseTaskCompleted PraiseKind = "task_completed"
	PraiseStreak        PraiseKind = "streak"
	PraiseAchievement   PraiseKind = "achievement"
	PraiseEarlyFinish   PraiseKind = "early_finish"
	PraiseUrgent        PraiseKind = "urgent"
	PraiseFirstOfDay    PraiseKind = "first_of_day"
)

type PraiseMessage struct {
	Kind    PraiseKind `json:"kind"`
	Message string     `json:"message"`
}

// PraiseToggles mirrors the user's settings switches.
type PraiseToggles struct {
	OnComplete    bool
	OnStreak      bool
	OnAchievement bool
	OnEarlyFinish bool
	OnUrgent      bool
	OnFirstOfDay  bool
}

// CompletionOutcome summarizes what a single completion produced.
type CompletionOutcome struct {
	Points        int
	Urgent        bool
	FinishedEarly bool
	FirstOfDay    bool
	StreakBefore  int
	StreakAfter   int
	Unlocked      []AchievementType
}

// Praise picks encouragement for an outcome. Output order is fixed so the
// same outcome always yields the same messages.
func Praise(o CompletionOutcome, t PraiseToggles) []PraiseMessage {
	var out []PraiseMessage

	if t.OnComplete {
		out = append(out, PraiseMessage{PraiseTaskCompleted, fmt.Sprintf("Nice work! +%d points.", o.Points)})
	}
	if t.OnUrgent && o.Urgent {
		out = append(out, PraiseMessage{PraiseUrgent, "You handled an urgent task. That takes focus."})
	}
	if t.OnEarlyFinish && o.FinishedEarly {
		out = append(out, PraiseMessage{PraiseEarlyFinish, "Done before the deadline. Great planning!"})
	}
	if t.OnFirstOfDay && o.FirstOfDay {
		out = append(out, PraiseMessage{PraiseFirstOfDay, "First task of the day, off to a strong start."})
	}
	if t.OnStreak && o.StreakAfter > 1 && o.StreakAfter > o.StreakBefore {
		out = append(out, PraiseMessage{PraiseStreak, fmt.Sprintf("%d days in a row. Keep it going!", o.StreakAfter)})
	}
	if t.OnAchievement {
		for _, a := range o.Unlocked {
			def := a.Definition()
			out = append(out, PraiseMessage{PraiseAchievement, fmt.Sprintf("Achievement unlocked: %s.", def.Title)})
		}
	}
	return out
}
