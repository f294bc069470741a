package tracking

import (
	"context"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"sort"
	"sync"
	"time"
)

// MockRepository keeps sessions and heartbeats in memory
type MockRepository struct {
	Sessions   []*Session
	Heartbeats []*Heartbeat
	mutex      sync.RWMutex
}

// AddSession adds a session
func (m *MockRepository) AddSession(_ context.Context, session *Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now()
	session.LastModifiedAt = time.Now()

	stored := *session
	m.Sessions = append(m.Sessions, &stored)
	return nil
}

// UpdateSession updates a session
func (m *MockRepository) UpdateSession(_ context.Context, session *Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, s := range m.Sessions {
		if s.ID == session.ID && s.UserID == session.UserID {
			session.LastModifiedAt = time.Now()
			stored := *session
			m.Sessions[i] = &stored
			return nil
		}
	}

	return apperror.NotFound("Session not found.")
}

// FindSessionByID finds a session of a user
func (m *MockRepository) FindSessionByID(_ context.Context, sessionID string, userID string) (*Session, error) {
	return m.findSession(func(s *Session) bool {
		return s.ID.Hex() == sessionID && s.UserID.Hex() == userID
	})
}

// FindActiveSession finds the ACTIVE session of a user
func (m *MockRepository) FindActiveSession(_ context.Context, userID string) (*Session, error) {
	return m.findSession(func(s *Session) bool {
		return s.UserID.Hex() == userID && s.Status == StatusActive
	})
}

func (m *MockRepository) findSession(match func(s *Session) bool) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, s := range m.Sessions {
		if match(s) {
			found := *s
			return &found, nil
		}
	}

	return nil, apperror.NotFound("Session not found.")
}

// AddHeartbeat adds a heartbeat
func (m *MockRepository) AddHeartbeat(_ context.Context, heartbeat *Heartbeat) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	heartbeat.ID = primitive.NewObjectID()
	stored := *heartbeat
	m.Heartbeats = append(m.Heartbeats, &stored)
	return nil
}

// FindHeartbeatsBetween finds the heartbeats of a user in [from, to) ordered by time
func (m *MockRepository) FindHeartbeatsBetween(_ context.Context, userID string, from time.Time, to time.Time) ([]Heartbeat, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	heartbeats := make([]Heartbeat, 0)
	for _, h := range m.Heartbeats {
		if h.UserID.Hex() == userID && !h.Timestamp.Before(from) && h.Timestamp.Before(to) {
			heartbeats = append(heartbeats, *h)
		}
	}

	sort.Slice(heartbeats, func(i, j int) bool {
		return heartbeats[i].Timestamp.Before(heartbeats[j].Timestamp)
	})

	return heartbeats, nil
}

// FindLatestHeartbeat finds the most recent heartbeat of a user
func (m *MockRepository) FindLatestHeartbeat(_ context.Context, userID string) (*Heartbeat, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var latest *Heartbeat
	for _, h := range m.Heartbeats {
		if h.UserID.Hex() == userID && (latest == nil || h.Timestamp.After(latest.Timestamp)) {
			latest = h
		}
	}

	if latest == nil {
		return nil, apperror.NotFound("No heartbeat found.")
	}

	found := *latest
	return &found, nil
}

// CountHeartbeats counts the heartbeats of a user
func (m *MockRepository) CountHeartbeats(_ context.Context, userID string) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	count := int64(0)
	for _, h := range m.Heartbeats {
		if h.UserID.Hex() == userID {
			count++
		}
	}

	return count, nil
}
