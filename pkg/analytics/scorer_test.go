package analytics

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func metricsOf(tracked, active, deepWork float64, completed, started, switches int) DailyMetrics {
	return DailyMetrics{
		Date:        "2026-03-10",
		TimeMetrics: TimeMetrics{TrackedTime: tracked, ActiveTime: active, DeepWorkTime: deepWork},
		TaskMetrics: TaskMetrics{Completed: completed, Started: started, ContextSwitches: switches, BreaksTaken: 2},
	}
}

func TestScore_Scenario(t *testing.T) {
	focused := Score(metricsOf(480, 420, 180, 5, 5, 3), DefaultScoring)
	assert.Equal(t, 0.875, focused.Ratios.Engagement)
	assert.Equal(t, 1.0, focused.Ratios.TaskCompletion)
	assert.Equal(t, 30.0, focused.Breakdown.DeepWork)
	assert.Equal(t, 26.25, focused.Breakdown.Engagement)
	assert.Equal(t, 30.0, focused.Breakdown.TaskCompletion)
	assert.Equal(t, 1.2, focused.Breakdown.ContextSwitchPenalty)
	assert.Equal(t, 85.05, focused.Score)

	shallow := Score(metricsOf(480, 420, 0, 5, 5, 3), DefaultScoring)
	assert.Greater(t, focused.Score, shallow.Score)
}

func TestScore_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		metrics DailyMetrics
		want    float64
	}{
		{"nothing tracked", metricsOf(0, 0, 0, 0, 0, 0), 0},
		{"penalty exceeds gains", metricsOf(60, 10, 0, 0, 4, 500), 0},
		{"everything maxed", metricsOf(300, 300, 600, 9, 3, 0), 100},
		{"completed without started", metricsOf(100, 50, 0, 2, 0, 0), 45},
		{"penalty capped", metricsOf(480, 480, 240, 5, 5, 1000), 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(tt.metrics, DefaultScoring)
			assert.Equal(t, tt.want, score.Score)
			assert.GreaterOrEqual(t, score.Score, 0.0)
			assert.LessOrEqual(t, score.Score, 100.0)
		})
	}
}

func TestTaskCompletionRatio(t *testing.T) {
	assert.Equal(t, 1.0, taskCompletionRatio(3, 0))
	assert.Equal(t, 0.0, taskCompletionRatio(0, 0))
	assert.Equal(t, 0.5, taskCompletionRatio(2, 4))
	assert.Equal(t, 1.0, taskCompletionRatio(6, 4))
}
