package analytics

import (
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"math"
	"time"
)

// Risk levels
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Burnout factor names, also the keys of the recommendations
const (
	FactorLateNightLoad           = "late_night_load"
	FactorWeekendWork             = "weekend_work"
	FactorHighEngagementLowBreaks = "high_engagement_low_breaks"
	FactorDecliningDeepWorkTrend  = "declining_deep_work_trend"
	FactorBalanced                = "balanced"
)

var recommendations = map[string]string{
	FactorLateNightLoad: "A large share of your tracked time falls outside daytime hours. " +
		"Try to finish work earlier in the evening and protect your sleep.",
	FactorWeekendWork: "You have been working on weekends. " +
		"Plan at least one full day off per week to recover.",
	FactorHighEngagementLowBreaks: "You work at high intensity while taking few breaks. " +
		"Step away for a short break about every 90 minutes.",
	FactorDecliningDeepWorkTrend: "Your deep-work time is trending down. " +
		"Block focus time in your calendar and reduce interruptions.",
	FactorBalanced: "No dominant burnout signal in this period. Keep up your current routine.",
}

// BurnoutFactors are the risk factors, each in [0, 1]
type BurnoutFactors struct {
	LateNightLoad           float64 `json:"late_night_load"`
	WeekendWork             float64 `json:"weekend_work"`
	HighEngagementLowBreaks float64 `json:"high_engagement_low_breaks"`
	DecliningDeepWorkTrend  float64 `json:"declining_deep_work_trend"`
}

// BurnoutAssessment is the burnout risk over a lookback window
type BurnoutAssessment struct {
	RiskLevel      string         `json:"risk_level"`
	RiskScore      float64        `json:"risk_score"`
	Factors        BurnoutFactors `json:"factors"`
	DominantFactor string         `json:"dominant_factor"`
	Recommendation string         `json:"recommendation"`
	LookbackDays   int            `json:"lookback_days"`
	DaysWithData   int            `json:"days_with_data"`
	WindowStart    string         `json:"window_start"`
	WindowEnd      string         `json:"window_end"`
}

// AssessBurnout evaluates the work logs of the window days, ordered oldest first, in location. Entries outside
// the window are ignored. Fewer than MinDaysWithData entries yield an InsufficientDataError.
func AssessBurnout(entries []activity.WorkLogEntry, window []time.Time, location *time.Location, config BurnoutConfig) (*BurnoutAssessment, error) {
	if len(window) == 0 {
		return nil, apperror.Validation("lookback window is empty")
	}

	offsets := make(map[string]int, len(window))
	for i, day := range window {
		offsets[day.Format(date.Layout)] = i
	}

	var dataDays []activity.WorkLogEntry
	for _, entry := range entries {
		if _, ok := offsets[entry.Date]; ok {
			dataDays = append(dataDays, entry)
		}
	}

	if len(dataDays) < config.MinDaysWithData {
		return nil, apperror.InsufficientData(config.MinDaysWithData, len(dataDays),
			"Not enough data: burnout assessment needs work logs on at least %d days, found %d.",
			config.MinDaysWithData, len(dataDays))
	}

	var tracked, lateNight, weekend float64
	highEngagementDays := 0
	xs := make([]float64, 0, len(dataDays))
	ys := make([]float64, 0, len(dataDays))

	for _, entry := range dataDays {
		tracked += entry.TotalTrackedMinutes
		lateNight += lateNightMinutes(&entry, location, config)

		day, err := date.ParseDay(entry.Date, location)
		if err == nil && date.IsWeekend(day) {
			weekend += entry.TotalTrackedMinutes
		}

		expectedBreaks := math.Floor(entry.TotalTrackedMinutes / config.MinutesPerBreak)
		if entry.TotalTrackedMinutes > 0 &&
			engagementRatio(entry.ActiveMinutes, entry.TotalTrackedMinutes) >= config.HighEngagementRatio &&
			float64(entry.BreaksTaken) < expectedBreaks {
			highEngagementDays++
		}

		xs = append(xs, float64(offsets[entry.Date]))
		ys = append(ys, entry.DeepWorkMinutes)
	}

	factors := BurnoutFactors{
		LateNightLoad:           clamp(ratio(lateNight, tracked), 0, 1),
		WeekendWork:             clamp(ratio(weekend, tracked), 0, 1),
		HighEngagementLowBreaks: float64(highEngagementDays) / float64(len(dataDays)),
		DecliningDeepWorkTrend:  decliningTrend(slope(xs, ys), config.SlopeNormalizer),
	}

	w := config.Weights
	riskScore := w.LateNightLoad*factors.LateNightLoad +
		w.WeekendWork*factors.WeekendWork +
		w.HighEngagementLowBreaks*factors.HighEngagementLowBreaks +
		w.DecliningDeepWorkTrend*factors.DecliningDeepWorkTrend
	riskScore = clamp(riskScore, 0, 1)

	dominant := dominantFactor(factors)

	return &BurnoutAssessment{
		RiskLevel: riskLevel(riskScore, config.Bands),
		RiskScore: round(riskScore, 4),
		Factors: BurnoutFactors{
			LateNightLoad:           round(factors.LateNightLoad, 4),
			WeekendWork:             round(factors.WeekendWork, 4),
			HighEngagementLowBreaks: round(factors.HighEngagementLowBreaks, 4),
			DecliningDeepWorkTrend:  round(factors.DecliningDeepWorkTrend, 4),
		},
		DominantFactor: dominant,
		Recommendation: recommendations[dominant],
		LookbackDays:   len(window),
		DaysWithData:   len(dataDays),
		WindowStart:    window[0].Format(date.Layout),
		WindowEnd:      window[len(window)-1].Format(date.Layout),
	}, nil
}

// lateNightMinutes prefers the submitted value and falls back to the session span outside the daytime window
func lateNightMinutes(entry *activity.WorkLogEntry, location *time.Location, config BurnoutConfig) float64 {
	if entry.LateNightMinutes != nil {
		return math.Min(*entry.LateNightMinutes, entry.TotalTrackedMinutes)
	}

	session, ok := entry.Session()
	if !ok {
		return 0
	}

	outside := date.MinutesOutsideClock(session, config.DaytimeStartHour, config.DaytimeEndHour, location)
	return math.Min(outside, entry.TotalTrackedMinutes)
}

// slope is the least-squares slope of ys over xs, 0 for fewer than two points
func slope(xs []float64, ys []float64) float64 {
	n := float64(len(xs))
	if len(xs) < 2 {
		return 0
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var numerator, denominator float64
	for i := range xs {
		numerator += (xs[i] - meanX) * (ys[i] - meanY)
		denominator += (xs[i] - meanX) * (xs[i] - meanX)
	}

	return ratio(numerator, denominator)
}

// decliningTrend maps a slope in minutes per day to [0, 1], rising or flat trends are 0
func decliningTrend(slope float64, normalizer float64) float64 {
	if slope >= 0 {
		return 0
	}
	return math.Min(-slope/normalizer, 1)
}

func riskLevel(score float64, bands RiskBands) string {
	switch {
	case score >= bands.Critical:
		return RiskCritical
	case score >= bands.High:
		return RiskHigh
	case score >= bands.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// dominantFactor picks the largest factor, ties go to the one listed first
func dominantFactor(factors BurnoutFactors) string {
	ordered := []struct {
		name  string
		value float64
	}{
		{FactorLateNightLoad, factors.LateNightLoad},
		{FactorWeekendWork, factors.WeekendWork},
		{FactorHighEngagementLowBreaks, factors.HighEngagementLowBreaks},
		{FactorDecliningDeepWorkTrend, factors.DecliningDeepWorkTrend},
	}

	dominant := FactorBalanced
	highest := 0.0
	for _, factor := range ordered {
		if factor.value > highest {
			dominant = factor.name
			highest = factor.value
		}
	}

	return dominant
}
