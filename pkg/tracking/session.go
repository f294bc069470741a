package tracking

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Session states
const (
	StatusActive    = "ACTIVE"
	StatusPaused    = "PAUSED"
	StatusCompleted = "COMPLETED"
)

// Session is a work session, a user has at most one ACTIVE session
type Session struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	UserID         primitive.ObjectID `json:"user_id" bson:"userId"`
	StartTime      time.Time          `json:"start_time" bson:"startTime"`
	EndTime        *time.Time         `json:"end_time" bson:"endTime"`
	Status         string             `json:"status" bson:"status"`
	ProjectName    *string            `json:"project_name" bson:"projectName,omitempty"`
	CreatedAt      time.Time          `json:"-" bson:"createdAt"`
	LastModifiedAt time.Time          `json:"-" bson:"lastModifiedAt"`
}

// Heartbeat is a liveness ping sent by the tracking client while a session is active
type Heartbeat struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id"`
	SessionID primitive.ObjectID     `json:"session_id" bson:"sessionId"`
	UserID    primitive.ObjectID     `json:"-" bson:"userId"`
	Timestamp time.Time              `json:"timestamp" bson:"timestamp"`
	IsIdle    bool                   `json:"is_idle" bson:"isIdle"`
	MetaData  map[string]interface{} `json:"meta_data" bson:"metaData,omitempty"`
}

// SessionStart is the optional request body for starting a session
type SessionStart struct {
	ProjectName *string `json:"project_name" validate:"omitempty,max=256"`
}

// SessionEnd is the request body for ending a session
type SessionEnd struct {
	SessionID string     `json:"session_id" validate:"required,len=24,hexadecimal"`
	EndTime   *time.Time `json:"end_time"`
}

// HeartbeatCreate is the request body of a heartbeat
type HeartbeatCreate struct {
	SessionID string                 `json:"session_id" validate:"required,len=24,hexadecimal"`
	Timestamp *time.Time             `json:"timestamp"`
	IsIdle    bool                   `json:"is_idle"`
	MetaData  map[string]interface{} `json:"meta_data"`
}
