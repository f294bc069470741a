package analytics

import (
	"github.com/stretchr/testify/assert"
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"testing"
	"time"
)

func TestComputeDailyMetrics(t *testing.T) {
	day := date.DayBounds(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	entry := activity.WorkLogEntry{
		Date:                "2026-03-10",
		TotalTrackedMinutes: 480,
		ActiveMinutes:       420,
		DeepWorkMinutes:     180,
		TasksCompleted:      5,
		TasksStarted:        5,
		ContextSwitches:     3,
		BreaksTaken:         2,
	}

	episodes := []activity.IdleEpisode{
		// crosses midnight, only 20 minutes belong to the day
		{StartTime: day.Start.Add(-40 * time.Minute), EndTime: day.Start.Add(20 * time.Minute)},
		{StartTime: day.Start.Add(10 * time.Hour), EndTime: day.Start.Add(10*time.Hour + 45*time.Minute)},
		{StartTime: day.Start.Add(14 * time.Hour), EndTime: day.Start.Add(14*time.Hour + 10*time.Minute)},
		// the day after
		{StartTime: day.End.Add(time.Hour), EndTime: day.End.Add(2 * time.Hour)},
	}

	metrics := ComputeDailyMetrics(&entry, episodes, day)
	assert.Equal(t, IsolationMetrics{Count: 3, TotalMinutes: 75, AverageMinutes: 25, LongestMinutes: 45}, metrics.IsolationMetrics)
	assert.Equal(t, TimeMetrics{TrackedTime: 480, ActiveTime: 420, DeepWorkTime: 180}, metrics.TimeMetrics)
	assert.Equal(t, 3, metrics.TaskMetrics.ContextSwitches)

	assert.Equal(t, metrics, ComputeDailyMetrics(&entry, episodes, day), "same input must yield the same metrics")
}

func TestComputeDailyMetrics_NoEpisodes(t *testing.T) {
	day := date.DayBounds(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	entry := activity.WorkLogEntry{Date: "2026-03-10", TotalTrackedMinutes: 60}

	metrics := ComputeDailyMetrics(&entry, nil, day)
	assert.Equal(t, IsolationMetrics{}, metrics.IsolationMetrics)
}
