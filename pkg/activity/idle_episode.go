package activity

import (
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"math"
	"time"
)

// IdleEpisode is an interval of inactivity, episodes are never changed after creation
type IdleEpisode struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"-" bson:"userId"`
	StartTime time.Time          `json:"start_time" bson:"startTime"`
	EndTime   time.Time          `json:"end_time" bson:"endTime"`
	Minutes   float64            `json:"minutes" bson:"minutes"`
	Reason    *string            `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"createdAt"`
}

// Timespan returns the episode as date.Timespan
func (e *IdleEpisode) Timespan() date.Timespan {
	return date.Timespan{Start: e.StartTime, End: e.EndTime}
}

// IdleEpisodeSubmission is the request body of an idle episode submission
type IdleEpisodeSubmission struct {
	StartTime *time.Time `json:"start_time" validate:"required"`
	EndTime   *time.Time `json:"end_time" validate:"required"`
	Reason    *string    `json:"reason" validate:"omitempty,max=256"`
}

// ToEpisode validates the submission and builds the IdleEpisode for userID.
// Episodes shorter than minimum are rejected.
func (s *IdleEpisodeSubmission) ToEpisode(userID primitive.ObjectID, minimum time.Duration) (*IdleEpisode, error) {
	err := validate.Struct(s)
	if err != nil {
		return nil, toValidationError(err)
	}

	span := date.Timespan{Start: s.StartTime.UTC(), End: s.EndTime.UTC()}
	if !span.IsStartBeforeEnd() {
		return nil, apperror.Validation("end_time must be after start_time")
	}

	if span.Duration() < minimum {
		return nil, apperror.Validation("idle episodes must last at least %d minutes", int(minimum.Minutes()))
	}

	return &IdleEpisode{
		UserID:    userID,
		StartTime: span.Start,
		EndTime:   span.End,
		Minutes:   math.Round(span.Minutes()*100) / 100,
		Reason:    s.Reason,
	}, nil
}
