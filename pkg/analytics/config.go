package analytics

import (
	"fmt"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"math"
	"os"
)

// ScoringConfig holds the productivity score constants. Changing them makes scores incomparable to
// earlier ones.
type ScoringConfig struct {
	TargetDeepWorkMinutes float64 `yaml:"target_deep_work_minutes"`
	DeepWorkWeight        float64 `yaml:"deep_work_weight"`
	EngagementWeight      float64 `yaml:"engagement_weight"`
	TaskCompletionWeight  float64 `yaml:"task_completion_weight"`
	PenaltyPerSwitch      float64 `yaml:"penalty_per_switch"`
	CapPenalty            float64 `yaml:"cap_penalty"`
}

// BurnoutWeights weigh the burnout factors, they sum to 1
type BurnoutWeights struct {
	LateNightLoad           float64 `yaml:"late_night_load"`
	WeekendWork             float64 `yaml:"weekend_work"`
	HighEngagementLowBreaks float64 `yaml:"high_engagement_low_breaks"`
	DecliningDeepWorkTrend  float64 `yaml:"declining_deep_work_trend"`
}

// RiskBands are the lower bounds of the medium, high and critical risk levels
type RiskBands struct {
	Medium   float64 `yaml:"medium"`
	High     float64 `yaml:"high"`
	Critical float64 `yaml:"critical"`
}

// BurnoutConfig configures the burnout risk model
type BurnoutConfig struct {
	DefaultLookbackDays int            `yaml:"default_lookback_days"`
	MinLookbackDays     int            `yaml:"min_lookback_days"`
	MaxLookbackDays     int            `yaml:"max_lookback_days"`
	MinDaysWithData     int            `yaml:"min_days_with_data"`
	DaytimeStartHour    int            `yaml:"daytime_start_hour"`
	DaytimeEndHour      int            `yaml:"daytime_end_hour"`
	HighEngagementRatio float64        `yaml:"high_engagement_ratio"`
	MinutesPerBreak     float64        `yaml:"minutes_per_break"`
	SlopeNormalizer     float64        `yaml:"slope_normalizer"`
	Weights             BurnoutWeights `yaml:"weights"`
	Bands               RiskBands      `yaml:"bands"`
}

// ForestConfig configures the isolation forest of the anomaly detector, zero trees disable it
type ForestConfig struct {
	Trees      int     `yaml:"trees"`
	SampleSize int     `yaml:"sample_size"`
	Seed       int64   `yaml:"seed"`
	Threshold  float64 `yaml:"threshold"`
}

// AnomalyConfig configures the anomaly detector
type AnomalyConfig struct {
	WindowDays          int          `yaml:"window_days"`
	MaxWindowDays       int          `yaml:"max_window_days"`
	MinBaselineSamples  int          `yaml:"min_baseline_samples"`
	K                   float64      `yaml:"k"`
	HighSeverityZ       float64      `yaml:"high_severity_z"`
	ContextSwitchTarget float64      `yaml:"context_switch_target"`
	Forest              ForestConfig `yaml:"forest"`
}

// HeatmapConfig configures the productivity heatmap
type HeatmapConfig struct {
	DefaultWeeks int `yaml:"default_weeks"`
	MaxWeeks     int `yaml:"max_weeks"`
}

// Config bundles the tuning of all analytics
type Config struct {
	Scoring ScoringConfig `yaml:"scoring"`
	Burnout BurnoutConfig `yaml:"burnout"`
	Anomaly AnomalyConfig `yaml:"anomaly"`
	Heatmap HeatmapConfig `yaml:"heatmap"`
}

// DefaultScoring is the stable scoring used unless a tuning file overrides it
var DefaultScoring = ScoringConfig{
	TargetDeepWorkMinutes: 240,
	DeepWorkWeight:        40,
	EngagementWeight:      30,
	TaskCompletionWeight:  30,
	PenaltyPerSwitch:      0.4,
	CapPenalty:            20,
}

// DefaultConfig returns the built-in analytics configuration
func DefaultConfig() Config {
	return Config{
		Scoring: DefaultScoring,
		Burnout: BurnoutConfig{
			DefaultLookbackDays: 14,
			MinLookbackDays:     3,
			MaxLookbackDays:     90,
			MinDaysWithData:     3,
			DaytimeStartHour:    7,
			DaytimeEndHour:      21,
			HighEngagementRatio: 0.8,
			MinutesPerBreak:     90,
			SlopeNormalizer:     10,
			Weights: BurnoutWeights{
				LateNightLoad:           0.3,
				WeekendWork:             0.2,
				HighEngagementLowBreaks: 0.3,
				DecliningDeepWorkTrend:  0.2,
			},
			Bands: RiskBands{Medium: 0.35, High: 0.6, Critical: 0.8},
		},
		Anomaly: AnomalyConfig{
			WindowDays:          30,
			MaxWindowDays:       120,
			MinBaselineSamples:  10,
			K:                   2.5,
			HighSeverityZ:       3,
			ContextSwitchTarget: 50,
			Forest: ForestConfig{
				Trees:      100,
				SampleSize: 256,
				Seed:       42,
				Threshold:  0.6,
			},
		},
		Heatmap: HeatmapConfig{DefaultWeeks: 4, MaxWeeks: 12},
	}
}

// LoadConfig reads a YAML tuning file over the defaults, an empty path returns the defaults
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrap(err, "could not read analytics config")
	}

	err = yaml.Unmarshal(content, &config)
	if err != nil {
		return config, errors.Wrap(err, "could not parse analytics config")
	}

	return config, config.Validate()
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	s := c.Scoring
	if s.TargetDeepWorkMinutes <= 0 {
		return fmt.Errorf("scoring.target_deep_work_minutes must be positive")
	}
	if s.DeepWorkWeight < 0 || s.EngagementWeight < 0 || s.TaskCompletionWeight < 0 || s.PenaltyPerSwitch < 0 || s.CapPenalty < 0 {
		return fmt.Errorf("scoring weights and penalties must not be negative")
	}

	b := c.Burnout
	w := b.Weights
	sum := w.LateNightLoad + w.WeekendWork + w.HighEngagementLowBreaks + w.DecliningDeepWorkTrend
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("burnout weights must sum to 1, got %g", sum)
	}
	if w.LateNightLoad < 0 || w.WeekendWork < 0 || w.HighEngagementLowBreaks < 0 || w.DecliningDeepWorkTrend < 0 {
		return fmt.Errorf("burnout weights must not be negative")
	}
	if !(0 < b.Bands.Medium && b.Bands.Medium < b.Bands.High && b.Bands.High < b.Bands.Critical && b.Bands.Critical <= 1) {
		return fmt.Errorf("burnout bands must ascend within (0, 1]")
	}
	if b.MinLookbackDays < 1 || b.MinLookbackDays > b.DefaultLookbackDays || b.DefaultLookbackDays > b.MaxLookbackDays {
		return fmt.Errorf("burnout lookback bounds must satisfy 1 <= min <= default <= max")
	}
	if b.MinDaysWithData < 1 || b.MinDaysWithData > b.MinLookbackDays {
		return fmt.Errorf("burnout.min_days_with_data must lie between 1 and min_lookback_days")
	}
	if b.DaytimeStartHour < 0 || b.DaytimeStartHour >= b.DaytimeEndHour || b.DaytimeEndHour > 24 {
		return fmt.Errorf("burnout daytime window must satisfy 0 <= start < end <= 24")
	}
	if b.MinutesPerBreak <= 0 || b.SlopeNormalizer <= 0 {
		return fmt.Errorf("burnout.minutes_per_break and slope_normalizer must be positive")
	}

	a := c.Anomaly
	if a.K <= 0 || a.HighSeverityZ < a.K {
		return fmt.Errorf("anomaly thresholds must satisfy 0 < k <= high_severity_z")
	}
	if a.MinBaselineSamples < 2 || a.WindowDays <= a.MinBaselineSamples {
		return fmt.Errorf("anomaly.window_days must exceed min_baseline_samples, which must be at least 2")
	}
	if a.MaxWindowDays < a.WindowDays {
		return fmt.Errorf("anomaly.max_window_days must be at least window_days")
	}
	if a.ContextSwitchTarget <= 0 {
		return fmt.Errorf("anomaly.context_switch_target must be positive")
	}
	if a.Forest.Trees < 0 || (a.Forest.Trees > 0 && (a.Forest.SampleSize < 2 || a.Forest.Threshold <= 0 || a.Forest.Threshold >= 1)) {
		return fmt.Errorf("anomaly.forest needs a sample size of at least 2 and a threshold within (0, 1)")
	}

	h := c.Heatmap
	if h.DefaultWeeks < 1 || h.DefaultWeeks > h.MaxWeeks {
		return fmt.Errorf("heatmap weeks must satisfy 1 <= default <= max")
	}

	return nil
}
