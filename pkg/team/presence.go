package team

import (
	"github.com/tracktivity-app/tracktivity-backend/pkg/tracking"
	"time"
)

// Presence statuses
const (
	StatusActive  = "ACTIVE"
	StatusIdle    = "IDLE"
	StatusOffline = "OFFLINE"
)

const (
	activeWindow = 5 * time.Minute
	idleWindow   = 15 * time.Minute
	// heartbeats further in the future than this are not trusted
	maxClockSkew = time.Minute
)

// MemberPresence is the presence of one team member
type MemberPresence struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	TimeZone string `json:"timezone"`
}

// StatusOf derives the presence status from the latest heartbeat, nil meaning no heartbeat at all
func StatusOf(latest *tracking.Heartbeat, at time.Time) string {
	if latest == nil {
		return StatusOffline
	}

	age := at.Sub(latest.Timestamp)
	if age < -maxClockSkew {
		return StatusOffline
	}
	if age < 0 {
		age = 0
	}

	switch {
	case age < activeWindow && !latest.IsIdle:
		return StatusActive
	case age < idleWindow:
		return StatusIdle
	default:
		return StatusOffline
	}
}
