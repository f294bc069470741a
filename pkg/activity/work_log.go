package activity

import (
	"github.com/go-playground/validator/v10"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"reflect"
	"strings"
	"time"
)

var validate = newValidator()

// newValidator reports fields by their json name
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// WorkLogEntry is the daily work log a user submits, one per user and date
type WorkLogEntry struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id"`
	UserID              primitive.ObjectID `json:"-" bson:"userId"`
	Date                string             `json:"date" bson:"date"`
	TotalTrackedMinutes float64            `json:"total_tracked_time" bson:"totalTrackedMinutes"`
	ActiveMinutes       float64            `json:"active_time" bson:"activeMinutes"`
	DeepWorkMinutes     float64            `json:"deep_work_time" bson:"deepWorkMinutes"`
	TasksCompleted      int                `json:"tasks_completed" bson:"tasksCompleted"`
	TasksStarted        int                `json:"tasks_started" bson:"tasksStarted"`
	ContextSwitches     int                `json:"context_switches" bson:"contextSwitches"`
	BreaksTaken         int                `json:"breaks_taken" bson:"breaksTaken"`
	LateNightMinutes    *float64           `json:"late_night_minutes,omitempty" bson:"lateNightMinutes,omitempty"`
	SessionStartedAt    *time.Time         `json:"session_started_at,omitempty" bson:"sessionStartedAt,omitempty"`
	SessionEndedAt      *time.Time         `json:"session_ended_at,omitempty" bson:"sessionEndedAt,omitempty"`
	Notes               *string            `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt           time.Time          `json:"created_at" bson:"createdAt"`
	LastModifiedAt      time.Time          `json:"last_modified_at" bson:"lastModifiedAt"`
}

// Session returns the tracked session span if both timestamps were submitted
func (w *WorkLogEntry) Session() (date.Timespan, bool) {
	if w.SessionStartedAt == nil || w.SessionEndedAt == nil {
		return date.Timespan{}, false
	}

	return date.Timespan{Start: *w.SessionStartedAt, End: *w.SessionEndedAt}, true
}

// WorkLogSubmission is the request body of a work log submission
type WorkLogSubmission struct {
	Date             string     `json:"date" validate:"required"`
	TotalTrackedTime *float64   `json:"total_tracked_time" validate:"required,gte=0"`
	ActiveTime       *float64   `json:"active_time" validate:"required,gte=0"`
	DeepWorkTime     *float64   `json:"deep_work_time" validate:"required,gte=0"`
	TasksCompleted   *int       `json:"tasks_completed" validate:"required,gte=0"`
	TasksStarted     *int       `json:"tasks_started" validate:"required,gte=0"`
	ContextSwitches  *int       `json:"context_switches" validate:"required,gte=0"`
	BreaksTaken      *int       `json:"breaks_taken" validate:"required,gte=0"`
	LateNightMinutes *float64   `json:"late_night_minutes" validate:"omitempty,gte=0"`
	SessionStartedAt *time.Time `json:"session_started_at"`
	SessionEndedAt   *time.Time `json:"session_ended_at"`
	Notes            *string    `json:"notes" validate:"omitempty,max=2000"`
}

// ToEntry validates the submission and builds the WorkLogEntry for userID.
// The date must not lie after today in location.
func (s *WorkLogSubmission) ToEntry(userID primitive.ObjectID, location *time.Location, now time.Time) (*WorkLogEntry, error) {
	err := validate.Struct(s)
	if err != nil {
		return nil, toValidationError(err)
	}

	day, err := date.ParseDay(s.Date, location)
	if err != nil {
		return nil, apperror.Validation("date must have the format YYYY-MM-DD")
	}

	if day.After(date.StartOfDay(now.In(location))) {
		return nil, apperror.Validation("date %s lies in the future", s.Date)
	}

	tracked := *s.TotalTrackedTime
	if *s.ActiveTime > tracked {
		return nil, apperror.Validation("active_time must not exceed total_tracked_time")
	}

	if *s.DeepWorkTime > tracked {
		return nil, apperror.Validation("deep_work_time must not exceed total_tracked_time")
	}

	if s.LateNightMinutes != nil && *s.LateNightMinutes > tracked {
		return nil, apperror.Validation("late_night_minutes must not exceed total_tracked_time")
	}

	if s.SessionStartedAt != nil && s.SessionEndedAt != nil && !s.SessionEndedAt.After(*s.SessionStartedAt) {
		return nil, apperror.Validation("session_ended_at must be after session_started_at")
	}

	return &WorkLogEntry{
		UserID:              userID,
		Date:                day.Format(date.Layout),
		TotalTrackedMinutes: tracked,
		ActiveMinutes:       *s.ActiveTime,
		DeepWorkMinutes:     *s.DeepWorkTime,
		TasksCompleted:      *s.TasksCompleted,
		TasksStarted:        *s.TasksStarted,
		ContextSwitches:     *s.ContextSwitches,
		BreaksTaken:         *s.BreaksTaken,
		LateNightMinutes:    s.LateNightMinutes,
		SessionStartedAt:    s.SessionStartedAt,
		SessionEndedAt:      s.SessionEndedAt,
		Notes:               s.Notes,
	}, nil
}

func toValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperror.Validation("invalid request: %s", err.Error())
	}

	e := validationErrors[0]
	switch e.Tag() {
	case "required":
		return apperror.Validation("%s is required", e.Field())
	case "gte":
		return apperror.Validation("%s must be greater than or equal to %s", e.Field(), e.Param())
	case "max":
		return apperror.Validation("%s must be at most %s characters long", e.Field(), e.Param())
	default:
		return apperror.Validation(e.Error())
	}
}
