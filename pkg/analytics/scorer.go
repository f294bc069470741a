package analytics

import (
	"math"
)

// ScoreBreakdown holds the weighted components of a ProductivityScore
type ScoreBreakdown struct {
	DeepWork             float64 `json:"deep_work"`
	Engagement           float64 `json:"engagement"`
	TaskCompletion       float64 `json:"task_completion"`
	ContextSwitchPenalty float64 `json:"context_switch_penalty"`
}

// ScoreRatios are the unweighted ratios in [0, 1] behind the breakdown
type ScoreRatios struct {
	DeepWork       float64 `json:"deep_work"`
	Engagement     float64 `json:"engagement"`
	TaskCompletion float64 `json:"task_completion"`
}

// ProductivityScore is a score in [0, 100] with its breakdown
type ProductivityScore struct {
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Ratios    ScoreRatios    `json:"ratios"`
}

// Score computes the productivity score of a day:
//
//	deepWork       = min(deepWork / target, 1) * W1
//	engagement     = active / tracked * W2
//	taskCompletion = min(completed / started, 1) * W3
//	penalty        = min(switches * penaltyPerSwitch, capPenalty)
//	score          = clamp(deepWork + engagement + taskCompletion - penalty, 0, 100)
func Score(metrics DailyMetrics, config ScoringConfig) ProductivityScore {
	ratios := ScoreRatios{
		DeepWork:       clamp(ratio(metrics.TimeMetrics.DeepWorkTime, config.TargetDeepWorkMinutes), 0, 1),
		Engagement:     engagementRatio(metrics.TimeMetrics.ActiveTime, metrics.TimeMetrics.TrackedTime),
		TaskCompletion: taskCompletionRatio(metrics.TaskMetrics.Completed, metrics.TaskMetrics.Started),
	}

	breakdown := ScoreBreakdown{
		DeepWork:             ratios.DeepWork * config.DeepWorkWeight,
		Engagement:           ratios.Engagement * config.EngagementWeight,
		TaskCompletion:       ratios.TaskCompletion * config.TaskCompletionWeight,
		ContextSwitchPenalty: math.Min(float64(metrics.TaskMetrics.ContextSwitches)*config.PenaltyPerSwitch, config.CapPenalty),
	}

	score := breakdown.DeepWork + breakdown.Engagement + breakdown.TaskCompletion - breakdown.ContextSwitchPenalty

	return ProductivityScore{
		Score: round(clamp(score, 0, 100), 2),
		Breakdown: ScoreBreakdown{
			DeepWork:             round(breakdown.DeepWork, 2),
			Engagement:           round(breakdown.Engagement, 2),
			TaskCompletion:       round(breakdown.TaskCompletion, 2),
			ContextSwitchPenalty: round(breakdown.ContextSwitchPenalty, 2),
		},
		Ratios: ScoreRatios{
			DeepWork:       round(ratios.DeepWork, 4),
			Engagement:     round(ratios.Engagement, 4),
			TaskCompletion: round(ratios.TaskCompletion, 4),
		},
	}
}

// engagementRatio is active / tracked in [0, 1], 0 without tracked time
func engagementRatio(active float64, tracked float64) float64 {
	return clamp(ratio(active, tracked), 0, 1)
}

// taskCompletionRatio is completed / started capped at 1. Completing tasks without starting any counts as
// full completion, a day without tasks as none.
func taskCompletionRatio(completed int, started int) float64 {
	if started == 0 {
		if completed > 0 {
			return 1
		}
		return 0
	}

	return clamp(float64(completed)/float64(started), 0, 1)
}
