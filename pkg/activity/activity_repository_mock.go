package activity

import (
	"context"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"sort"
	"sync"
	"time"
)

// MockRepository is an in-memory activity store for tests and local development
type MockRepository struct {
	mutex        sync.RWMutex
	workLogs     map[string]map[string]WorkLogEntry
	idleEpisodes map[string][]IdleEpisode
	revisions    map[string]int64
	subscribers
}

// NewMockRepository builds an empty MockRepository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		workLogs:     map[string]map[string]WorkLogEntry{},
		idleEpisodes: map[string][]IdleEpisode{},
		revisions:    map[string]int64{},
	}
}

// UpsertWorkLog stores entry, last writer wins
func (m *MockRepository) UpsertWorkLog(_ context.Context, entry *WorkLogEntry) (bool, error) {
	m.mutex.Lock()

	userID := entry.UserID.Hex()
	if m.workLogs[userID] == nil {
		m.workLogs[userID] = map[string]WorkLogEntry{}
	}

	timestamp := time.Now()
	previous, exists := m.workLogs[userID][entry.Date]
	if exists {
		entry.ID = previous.ID
		entry.CreatedAt = previous.CreatedAt
	} else {
		entry.ID = primitive.NewObjectID()
		entry.CreatedAt = timestamp
	}
	entry.LastModifiedAt = timestamp

	m.workLogs[userID][entry.Date] = *entry
	m.revisions[userID]++
	revision := m.revisions[userID]

	m.mutex.Unlock()

	kind := EventWorkLogCreated
	if exists {
		kind = EventWorkLogUpdated
	}
	stored := *entry
	m.Publish(&Event{Kind: kind, UserID: userID, Revision: revision, WorkLog: &stored})

	return !exists, nil
}

// FindWorkLog finds the entry of a user for a day
func (m *MockRepository) FindWorkLog(_ context.Context, userID string, day string) (*WorkLogEntry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, ok := m.workLogs[userID][day]
	if !ok {
		return nil, apperror.NotFound("No work log for %s.", day)
	}

	return &entry, nil
}

// FindWorkLogsBetween finds the entries of a user between two days, both inclusive
func (m *MockRepository) FindWorkLogsBetween(_ context.Context, userID string, from string, to string) ([]WorkLogEntry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entries := make([]WorkLogEntry, 0)
	for day, entry := range m.workLogs[userID] {
		if day >= from && day <= to {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})

	return entries, nil
}

// AddIdleEpisode appends an idle episode
func (m *MockRepository) AddIdleEpisode(_ context.Context, episode *IdleEpisode) error {
	m.mutex.Lock()

	userID := episode.UserID.Hex()
	episode.ID = primitive.NewObjectID()
	episode.CreatedAt = time.Now()

	m.idleEpisodes[userID] = append(m.idleEpisodes[userID], *episode)
	m.revisions[userID]++
	revision := m.revisions[userID]

	m.mutex.Unlock()

	stored := *episode
	m.Publish(&Event{Kind: EventIdleEpisodeCreated, UserID: userID, Revision: revision, IdleEpisode: &stored})

	return nil
}

// FindIdleEpisodesBetween finds the episodes of a user that intersect [from, to)
func (m *MockRepository) FindIdleEpisodesBetween(_ context.Context, userID string, from time.Time, to time.Time) ([]IdleEpisode, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	episodes := make([]IdleEpisode, 0)
	for _, episode := range m.idleEpisodes[userID] {
		if episode.StartTime.Before(to) && episode.EndTime.After(from) {
			episodes = append(episodes, episode)
		}
	}

	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].StartTime.Before(episodes[j].StartTime)
	})

	return episodes, nil
}

// Revision returns the activity revision of a user
func (m *MockRepository) Revision(_ context.Context, userID string) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.revisions[userID], nil
}
