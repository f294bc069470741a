package analytics

import (
	"context"
	"fmt"
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"github.com/tracktivity-app/tracktivity-backend/pkg/tracking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/users"
	"golang.org/x/sync/errgroup"
	"time"
)

var now = time.Now

// Kinds of analytics, used in cache keys and instrumentation
const (
	KindDailySummary = "daily_summary"
	KindBurnout      = "burnout"
	KindAnomaly      = "anomaly"
	KindHeatmap      = "heatmap"
)

// Instrumentation observes analytics computations
type Instrumentation interface {
	ObserveComputation(kind string, duration time.Duration, cacheHit bool, err error)
}

type noopInstrumentation struct{}

func (noopInstrumentation) ObserveComputation(string, time.Duration, bool, error) {}

// DailySummary are the metrics of a day together with its productivity score
type DailySummary struct {
	DailyMetrics
	ProductivityScore ProductivityScore `json:"productivity_score"`
}

// Service computes analytics on request from the activity store
type Service struct {
	activityRepository activity.RepositoryInterface
	trackingRepository tracking.RepositoryInterface
	userRepository     users.UserRepositoryInterface
	cache              CacheInterface
	config             Config
	logger             logger.Interface
	instrumentation    Instrumentation
}

// NewService builds a new Service, cache and instrumentation may be nil
func NewService(activityRepository activity.RepositoryInterface, trackingRepository tracking.RepositoryInterface,
	userRepository users.UserRepositoryInterface, cache CacheInterface, config Config, logger logger.Interface,
	instrumentation Instrumentation) *Service {
	if instrumentation == nil {
		instrumentation = noopInstrumentation{}
	}

	return &Service{
		activityRepository: activityRepository,
		trackingRepository: trackingRepository,
		userRepository:     userRepository,
		cache:              cache,
		config:             config,
		logger:             logger,
		instrumentation:    instrumentation,
	}
}

// Config returns the analytics configuration in use
func (s *Service) Config() Config {
	return s.config
}

// DailySummary computes the metrics and score of a day, YYYY-MM-DD in the user's zone, empty meaning today.
// A day without work log yields a NotFoundError.
func (s *Service) DailySummary(ctx context.Context, userID string, day string) (*DailySummary, error) {
	user, err := users.Current(ctx, s.userRepository, userID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolveDay(day, user.Location(), "date")
	if err != nil {
		return nil, err
	}

	summary := DailySummary{}
	err = s.cached(ctx, KindDailySummary, userID, resolved.Format(date.Layout), &summary, func(ctx context.Context) (interface{}, error) {
		bounds := date.DayBounds(resolved)

		var entry *activity.WorkLogEntry
		var episodes []activity.IdleEpisode

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			entry, err = s.activityRepository.FindWorkLog(groupCtx, userID, resolved.Format(date.Layout))
			return err
		})
		group.Go(func() error {
			var err error
			episodes, err = s.activityRepository.FindIdleEpisodesBetween(groupCtx, userID, bounds.Start, bounds.End)
			return err
		})

		err := group.Wait()
		if err != nil {
			return nil, err
		}

		metrics := ComputeDailyMetrics(entry, episodes, bounds)
		return &DailySummary{DailyMetrics: metrics, ProductivityScore: Score(metrics, s.config.Scoring)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// Burnout assesses the burnout risk over lookbackDays days ending with endDate, an empty endDate meaning today
func (s *Service) Burnout(ctx context.Context, userID string, lookbackDays int, endDate string) (*BurnoutAssessment, error) {
	config := s.config.Burnout
	if lookbackDays < config.MinLookbackDays || lookbackDays > config.MaxLookbackDays {
		return nil, apperror.Validation("lookback_days must be between %d and %d", config.MinLookbackDays, config.MaxLookbackDays)
	}

	user, err := users.Current(ctx, s.userRepository, userID)
	if err != nil {
		return nil, err
	}

	location := user.Location()
	end, err := s.resolveDay(endDate, location, "end_date")
	if err != nil {
		return nil, err
	}

	window := date.Range(end, lookbackDays)
	params := fmt.Sprintf("%d:%s", lookbackDays, end.Format(date.Layout))

	assessment := BurnoutAssessment{}
	err = s.cached(ctx, KindBurnout, userID, params, &assessment, func(ctx context.Context) (interface{}, error) {
		entries, err := s.activityRepository.FindWorkLogsBetween(ctx, userID,
			window[0].Format(date.Layout), window[len(window)-1].Format(date.Layout))
		if err != nil {
			return nil, err
		}

		return AssessBurnout(entries, window, location, config)
	})
	if err != nil {
		return nil, err
	}

	return &assessment, nil
}

// Anomalies tests the most recent day with a work log in the lookbackDays window ending with endDate against
// the other days of the window
func (s *Service) Anomalies(ctx context.Context, userID string, lookbackDays int, endDate string) (*AnomalyReport, error) {
	config := s.config.Anomaly
	if lookbackDays <= config.MinBaselineSamples || lookbackDays > config.MaxWindowDays {
		return nil, apperror.Validation("lookback_days must be between %d and %d", config.MinBaselineSamples+1, config.MaxWindowDays)
	}

	user, err := users.Current(ctx, s.userRepository, userID)
	if err != nil {
		return nil, err
	}

	location := user.Location()
	end, err := s.resolveDay(endDate, location, "end_date")
	if err != nil {
		return nil, err
	}

	window := date.Range(end, lookbackDays)

	report := AnomalyReport{}
	params := fmt.Sprintf("%d:%s", lookbackDays, end.Format(date.Layout))
	err = s.cached(ctx, KindAnomaly, userID, params, &report, func(ctx context.Context) (interface{}, error) {
		var entries []activity.WorkLogEntry
		var episodes []activity.IdleEpisode

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			entries, err = s.activityRepository.FindWorkLogsBetween(groupCtx, userID,
				window[0].Format(date.Layout), window[len(window)-1].Format(date.Layout))
			return err
		})
		group.Go(func() error {
			var err error
			episodes, err = s.activityRepository.FindIdleEpisodesBetween(groupCtx, userID,
				window[0], date.DayBounds(window[len(window)-1]).End)
			return err
		})

		err := group.Wait()
		if err != nil {
			return nil, err
		}

		days := make([]DailyMetrics, 0, len(entries))
		for i := range entries {
			day, err := date.ParseDay(entries[i].Date, location)
			if err != nil {
				return nil, err
			}
			days = append(days, ComputeDailyMetrics(&entries[i], episodes, date.DayBounds(day)))
		}

		return DetectAnomalies(days, s.config.Anomaly, s.config.Scoring)
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// Heatmap builds the heatmap of the last weeks weeks up to and including today
func (s *Service) Heatmap(ctx context.Context, userID string, weeks int) ([]HeatmapPoint, error) {
	config := s.config.Heatmap
	if weeks < 1 || weeks > config.MaxWeeks {
		return nil, apperror.Validation("weeks must be between 1 and %d", config.MaxWeeks)
	}

	user, err := users.Current(ctx, s.userRepository, userID)
	if err != nil {
		return nil, err
	}

	location := user.Location()
	window := date.Range(now().In(location), weeks*7)
	from := window[0]
	to := date.DayBounds(window[len(window)-1]).End

	started := time.Now()

	// heartbeats do not move the activity revision, their count versions the input instead
	version, err := s.trackingRepository.CountHeartbeats(ctx, userID)
	if err != nil {
		s.instrumentation.ObserveComputation(KindHeatmap, time.Since(started), false, err)
		return nil, err
	}

	key := CacheKey(KindHeatmap, userID, fmt.Sprintf("%d:%s", weeks, window[len(window)-1].Format(date.Layout)), version)

	var points []HeatmapPoint
	if s.lookup(ctx, key, &points) {
		s.instrumentation.ObserveComputation(KindHeatmap, time.Since(started), true, nil)
		return points, nil
	}

	heartbeats, err := s.trackingRepository.FindHeartbeatsBetween(ctx, userID, from, to)
	if err != nil {
		s.instrumentation.ObserveComputation(KindHeatmap, time.Since(started), false, err)
		return nil, err
	}

	points = BuildHeatmap(heartbeats, location)
	s.store(ctx, key, points)
	s.instrumentation.ObserveComputation(KindHeatmap, time.Since(started), false, nil)

	return points, nil
}

// resolveDay parses value in location, an empty value resolves to today
func (s *Service) resolveDay(value string, location *time.Location, field string) (time.Time, error) {
	if value == "" {
		return date.StartOfDay(now().In(location)), nil
	}

	day, err := date.ParseDay(value, location)
	if err != nil {
		return time.Time{}, apperror.Validation("%s must have the format YYYY-MM-DD", field)
	}

	return day, nil
}

// cached serves result from the cache keyed by the current activity revision or computes and stores it
func (s *Service) cached(ctx context.Context, kind string, userID string, params string, result interface{},
	compute func(ctx context.Context) (interface{}, error)) error {
	started := time.Now()

	revision, err := s.activityRepository.Revision(ctx, userID)
	if err != nil {
		s.instrumentation.ObserveComputation(kind, time.Since(started), false, err)
		return err
	}

	key := CacheKey(kind, userID, params, revision)
	if s.lookup(ctx, key, result) {
		s.instrumentation.ObserveComputation(kind, time.Since(started), true, nil)
		return nil
	}

	computed, err := compute(ctx)
	if err != nil {
		s.instrumentation.ObserveComputation(kind, time.Since(started), false, err)
		return err
	}

	s.store(ctx, key, computed)
	s.instrumentation.ObserveComputation(kind, time.Since(started), false, nil)

	return assign(result, computed)
}

func (s *Service) lookup(ctx context.Context, key string, result interface{}) bool {
	if s.cache == nil {
		return false
	}

	hit, err := s.cache.Get(ctx, key, result)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("could not read analytics cache entry %s", key), err)
		return false
	}

	return hit
}

func (s *Service) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	err := s.cache.Set(ctx, key, value)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("could not write analytics cache entry %s", key), err)
	}
}

// assign copies a computed result into the caller's result pointer
func assign(result interface{}, computed interface{}) error {
	switch target := result.(type) {
	case *DailySummary:
		*target = *computed.(*DailySummary)
	case *BurnoutAssessment:
		*target = *computed.(*BurnoutAssessment)
	case *AnomalyReport:
		*target = *computed.(*AnomalyReport)
	default:
		return fmt.Errorf("unsupported analytics result %T", result)
	}

	return nil
}
