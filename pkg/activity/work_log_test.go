package activity

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"testing"
	"time"
)

func float(v float64) *float64 {
	return &v
}

func integer(v int) *int {
	return &v
}

func validSubmission() WorkLogSubmission {
	return WorkLogSubmission{
		Date:             "2026-03-10",
		TotalTrackedTime: float(480),
		ActiveTime:       float(420),
		DeepWorkTime:     float(180),
		TasksCompleted:   integer(5),
		TasksStarted:     integer(5),
		ContextSwitches:  integer(3),
		BreaksTaken:      integer(2),
	}
}

func TestWorkLogSubmission_ToEntry(t *testing.T) {
	today := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	userID := primitive.NewObjectID()

	submission := validSubmission()
	entry, err := submission.ToEntry(userID, time.UTC, today)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", entry.Date)
	assert.Equal(t, userID, entry.UserID)
	assert.Equal(t, 420.0, entry.ActiveMinutes)

	sessionStart := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	sessionEnd := sessionStart.Add(-time.Hour)

	tests := []struct {
		name   string
		modify func(s *WorkLogSubmission)
	}{
		{"missing tracked time", func(s *WorkLogSubmission) { s.TotalTrackedTime = nil }},
		{"missing tasks started", func(s *WorkLogSubmission) { s.TasksStarted = nil }},
		{"negative switches", func(s *WorkLogSubmission) { s.ContextSwitches = integer(-1) }},
		{"malformed date", func(s *WorkLogSubmission) { s.Date = "10.03.2026" }},
		{"future date", func(s *WorkLogSubmission) { s.Date = "2026-03-13" }},
		{"active exceeds tracked", func(s *WorkLogSubmission) { s.ActiveTime = float(481) }},
		{"deep work exceeds tracked", func(s *WorkLogSubmission) { s.DeepWorkTime = float(500) }},
		{"late night exceeds tracked", func(s *WorkLogSubmission) { s.LateNightMinutes = float(500) }},
		{"session ends before start", func(s *WorkLogSubmission) {
			s.SessionStartedAt = &sessionStart
			s.SessionEndedAt = &sessionEnd
		}},
		{"notes too long", func(s *WorkLogSubmission) {
			notes := string(make([]byte, 2001))
			s.Notes = &notes
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submission := validSubmission()
			tt.modify(&submission)

			entry, err := submission.ToEntry(userID, time.UTC, today)
			assert.Nil(t, entry)
			assert.True(t, apperror.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestWorkLogSubmission_ToEntry_UserZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2026-03-10 20:00 UTC is already 2026-03-11 in Tokyo
	instant := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	submission := validSubmission()
	submission.Date = "2026-03-11"

	_, err = submission.ToEntry(primitive.NewObjectID(), tokyo, instant)
	assert.NoError(t, err)

	_, err = submission.ToEntry(primitive.NewObjectID(), time.UTC, instant)
	assert.True(t, apperror.IsValidation(err))
}

func TestIdleEpisodeSubmission_ToEpisode(t *testing.T) {
	userID := primitive.NewObjectID()
	nine := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	reason := "meeting"

	tests := []struct {
		name    string
		start   *time.Time
		end     time.Time
		wantErr bool
		minutes float64
	}{
		{"valid", &nine, nine.Add(45 * time.Minute), false, 45},
		{"end before start", &nine, nine.Add(-30 * time.Minute), true, 0},
		{"end equals start", &nine, nine, true, 0},
		{"shorter than threshold", &nine, nine.Add(4 * time.Minute), true, 0},
		{"missing start", nil, nine, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := tt.end
			submission := IdleEpisodeSubmission{StartTime: tt.start, EndTime: &end, Reason: &reason}

			episode, err := submission.ToEpisode(userID, 5*time.Minute)
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err), "expected validation error, got %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.minutes, episode.Minutes)
			assert.Equal(t, "meeting", *episode.Reason)
		})
	}
}
