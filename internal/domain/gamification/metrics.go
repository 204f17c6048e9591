package gamification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "praise_tasks_completed_total",
			Help: "Total number of completed tasks by priority",
		},
		[]string{"priority"},
	)

	pointsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "praise_points_awarded_total",
			Help: "Total points awarded for task completions",
		},
	)

	pointsAdjusted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "praise_point_adjustments_total",
			Help: "Number of manual ledger adjustments by direction",
		},
		[]string{"direction"},
	)

	achievementsUnlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "praise_achievements_unlocked_total",
			Help: "Total number of unlocked achievements by type",
		},
		[]string{"type"},
	)
)

// RecordCompletion updates the completion counters after a commit.
func RecordCompletion(priority string, points int, unlocked []AchievementType) {
	tasksCompleted.WithLabelValues(priority).Inc()
	pointsAwarded.Add(float64(points))
	for _, a := range unlocked {
		achievementsUnlocked.WithLabelValues(string(a)).Inc()
	}
}

func recordAdjustment(amount int) {
	direction := "credit"
	if amount < 0 {
		direction = "debit"
	}
	pointsAdjusted.WithLabelValues(direction).Inc()
}
