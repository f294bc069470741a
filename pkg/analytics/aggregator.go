package analytics

import (
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"math"
)

// IsolationMetrics summarizes the idle episodes of a day in minutes
type IsolationMetrics struct {
	Count          int     `json:"count"`
	TotalMinutes   float64 `json:"total_minutes"`
	AverageMinutes float64 `json:"average_minutes"`
	LongestMinutes float64 `json:"longest_minutes"`
}

// TimeMetrics are the tracked minutes of a day
type TimeMetrics struct {
	TrackedTime  float64 `json:"tracked_time"`
	ActiveTime   float64 `json:"active_time"`
	DeepWorkTime float64 `json:"deep_work_time"`
}

// TaskMetrics are the task counters of a day
type TaskMetrics struct {
	Completed       int `json:"completed"`
	Started         int `json:"started"`
	ContextSwitches int `json:"context_switches"`
	BreaksTaken     int `json:"breaks_taken"`
}

// DailyMetrics are the metrics of one day derived from its work log and idle episodes
type DailyMetrics struct {
	Date             string           `json:"date"`
	IsolationMetrics IsolationMetrics `json:"isolation_metrics"`
	TimeMetrics      TimeMetrics      `json:"time_metrics"`
	TaskMetrics      TaskMetrics      `json:"task_metrics"`
}

// ComputeDailyMetrics derives the metrics of day from its work log entry and the idle episodes. Episodes
// only count with the part that overlaps day.
func ComputeDailyMetrics(entry *activity.WorkLogEntry, episodes []activity.IdleEpisode, day date.Timespan) DailyMetrics {
	isolation := IsolationMetrics{}
	for _, episode := range episodes {
		span := episode.Timespan()
		minutes := span.Overlap(day).Minutes()
		if minutes <= 0 {
			continue
		}

		isolation.Count++
		isolation.TotalMinutes += minutes
		if minutes > isolation.LongestMinutes {
			isolation.LongestMinutes = minutes
		}
	}

	if isolation.Count > 0 {
		isolation.AverageMinutes = isolation.TotalMinutes / float64(isolation.Count)
	}

	return DailyMetrics{
		Date: entry.Date,
		IsolationMetrics: IsolationMetrics{
			Count:          isolation.Count,
			TotalMinutes:   round(isolation.TotalMinutes, 2),
			AverageMinutes: round(isolation.AverageMinutes, 2),
			LongestMinutes: round(isolation.LongestMinutes, 2),
		},
		TimeMetrics: TimeMetrics{
			TrackedTime:  round(entry.TotalTrackedMinutes, 2),
			ActiveTime:   round(entry.ActiveMinutes, 2),
			DeepWorkTime: round(entry.DeepWorkMinutes, 2),
		},
		TaskMetrics: TaskMetrics{
			Completed:       entry.TasksCompleted,
			Started:         entry.TasksStarted,
			ContextSwitches: entry.ContextSwitches,
			BreaksTaken:     entry.BreaksTaken,
		},
	}
}

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

func clamp(value float64, low float64, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

// ratio divides and returns 0 for a zero denominator
func ratio(numerator float64, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
