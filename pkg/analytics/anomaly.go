package analytics

import (
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"math"
)

// Severities of a flagged metric
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Detection methods
const (
	MethodZScore         = "zscore"
	MethodZScoreEnsemble = "zscore+isolation_forest"
)

// Anomaly is a metric of the latest day outside its expected range
type Anomaly struct {
	Metric        string     `json:"metric"`
	Value         float64    `json:"value"`
	ExpectedRange [2]float64 `json:"expected_range"`
	Severity      string     `json:"severity"`
	ZScore        float64    `json:"z_score"`
}

// AnomalyReport compares the latest day with the baseline of the days before it
type AnomalyReport struct {
	AnomaliesDetected bool      `json:"anomalies_detected"`
	Method            string    `json:"method"`
	Anomalies         []Anomaly `json:"anomalies"`
	Date              string    `json:"date"`
	BaselineDays      int       `json:"baseline_days"`
	EnsembleScore     *float64  `json:"ensemble_score,omitempty"`
	EnsembleFlagged   bool      `json:"ensemble_flagged"`
}

type metricExtractor struct {
	name  string
	value func(m *DailyMetrics) float64
}

var anomalyMetrics = []metricExtractor{
	{"deep_work_minutes", func(m *DailyMetrics) float64 { return m.TimeMetrics.DeepWorkTime }},
	{"active_minutes", func(m *DailyMetrics) float64 { return m.TimeMetrics.ActiveTime }},
	{"context_switches", func(m *DailyMetrics) float64 { return float64(m.TaskMetrics.ContextSwitches) }},
	{"idle_minutes", func(m *DailyMetrics) float64 { return m.IsolationMetrics.TotalMinutes }},
}

// DetectAnomalies tests the last of days, ordered oldest first, against the others. A baseline below
// MinBaselineSamples days yields an InsufficientDataError.
func DetectAnomalies(days []DailyMetrics, config AnomalyConfig, scoring ScoringConfig) (*AnomalyReport, error) {
	baselineSize := len(days) - 1
	if baselineSize < config.MinBaselineSamples {
		if baselineSize < 0 {
			baselineSize = 0
		}
		return nil, apperror.InsufficientData(config.MinBaselineSamples, baselineSize,
			"Not enough data: anomaly detection needs a baseline of at least %d days, found %d.",
			config.MinBaselineSamples, baselineSize)
	}

	current := days[len(days)-1]
	baseline := days[:baselineSize]

	report := AnomalyReport{
		Method:       MethodZScore,
		Anomalies:    make([]Anomaly, 0),
		Date:         current.Date,
		BaselineDays: baselineSize,
	}

	for _, metric := range anomalyMetrics {
		values := make([]float64, len(baseline))
		for i := range baseline {
			values[i] = metric.value(&baseline[i])
		}

		mean, sd := meanAndStdDev(values)
		if sd == 0 {
			continue
		}

		value := metric.value(&current)
		z := (value - mean) / sd
		if math.Abs(z) <= config.K {
			continue
		}

		report.Anomalies = append(report.Anomalies, Anomaly{
			Metric:        metric.name,
			Value:         round(value, 2),
			ExpectedRange: [2]float64{round(mean-config.K*sd, 2), round(mean+config.K*sd, 2)},
			Severity:      severity(z, config),
			ZScore:        round(z, 2),
		})
	}

	report.AnomaliesDetected = len(report.Anomalies) > 0

	if config.Forest.Trees > 0 {
		samples := make([][]float64, len(baseline))
		for i := range baseline {
			samples[i] = featureVector(&baseline[i], config, scoring)
		}

		forest := NewIsolationForest(samples, config.Forest.Trees, config.Forest.SampleSize, config.Forest.Seed)
		score := round(forest.Score(featureVector(&current, config, scoring)), 4)

		report.Method = MethodZScoreEnsemble
		report.EnsembleScore = &score
		report.EnsembleFlagged = score > config.Forest.Threshold
	}

	return &report, nil
}

// featureVector is the normalized vector the isolation forest works on
func featureVector(m *DailyMetrics, config AnomalyConfig, scoring ScoringConfig) []float64 {
	tracked := m.TimeMetrics.TrackedTime

	taskCompletion := 0.0
	if m.TaskMetrics.Started > 0 {
		taskCompletion = clamp(float64(m.TaskMetrics.Completed)/float64(m.TaskMetrics.Started), 0, 1)
	}

	return []float64{
		clamp(ratio(m.TimeMetrics.DeepWorkTime, scoring.TargetDeepWorkMinutes), 0, 1),
		engagementRatio(m.TimeMetrics.ActiveTime, tracked),
		taskCompletion,
		clamp(ratio(float64(m.TaskMetrics.ContextSwitches), config.ContextSwitchTarget), 0, 1),
		clamp(ratio(m.IsolationMetrics.TotalMinutes, tracked), 0, 1),
	}
}

// meanAndStdDev returns the mean and population standard deviation
func meanAndStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	sd := math.Sqrt(variance)
	if sd < 1e-12 {
		sd = 0
	}

	return mean, sd
}

func severity(z float64, config AnomalyConfig) string {
	switch {
	case math.Abs(z) > config.HighSeverityZ:
		return SeverityHigh
	case math.Abs(z) > config.K:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
