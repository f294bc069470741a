package tracking

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/locking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"sync"
	"testing"
	"time"
)

func newTestService() (*Service, *MockRepository) {
	repository := &MockRepository{}
	return NewService(repository, locking.NewLockerMemory(), logger.NewNop()), repository
}

func TestService_StartSession(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	userID := primitive.NewObjectID().Hex()
	project := "backend"

	session, err := service.StartSession(ctx, userID, &project)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, session.Status)
	assert.Nil(t, session.EndTime)

	_, err = service.StartSession(ctx, userID, nil)
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = service.EndSession(ctx, userID, SessionEnd{SessionID: session.ID.Hex()})
	require.NoError(t, err)

	_, err = service.StartSession(ctx, userID, nil)
	assert.NoError(t, err)
}

func TestService_StartSession_Concurrent(t *testing.T) {
	ctx := context.Background()
	service, repository := newTestService()
	userID := primitive.NewObjectID().Hex()

	var wg sync.WaitGroup
	var mutex sync.Mutex
	started := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.StartSession(ctx, userID, nil)
			if err == nil {
				mutex.Lock()
				started++
				mutex.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
	assert.Len(t, repository.Sessions, 1)
}

func TestService_EndSession(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	userID := primitive.NewObjectID().Hex()

	session, err := service.StartSession(ctx, userID, nil)
	require.NoError(t, err)

	before := session.StartTime.Add(-time.Minute)
	_, err = service.EndSession(ctx, userID, SessionEnd{SessionID: session.ID.Hex(), EndTime: &before})
	assert.True(t, apperror.IsValidation(err))

	_, err = service.EndSession(ctx, primitive.NewObjectID().Hex(), SessionEnd{SessionID: session.ID.Hex()})
	assert.True(t, apperror.IsNotFound(err), "sessions of other users must not be visible")

	ended, err := service.EndSession(ctx, userID, SessionEnd{SessionID: session.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, ended.Status)
	require.NotNil(t, ended.EndTime)

	_, err = service.EndSession(ctx, userID, SessionEnd{SessionID: session.ID.Hex()})
	assert.True(t, apperror.IsValidation(err))
}

func TestService_RecordHeartbeat(t *testing.T) {
	ctx := context.Background()
	service, repository := newTestService()
	userID := primitive.NewObjectID().Hex()

	now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	_, err := service.RecordHeartbeat(ctx, userID, HeartbeatCreate{SessionID: primitive.NewObjectID().Hex()})
	assert.True(t, apperror.IsNotFound(err))

	session, err := service.StartSession(ctx, userID, nil)
	require.NoError(t, err)
	now = func() time.Time { return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC) }

	for _, rejected := range []time.Time{
		time.Date(2026, 3, 10, 8, 59, 59, 0, time.UTC),
		time.Date(2026, 3, 10, 9, 30, 1, 0, time.UTC),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		rejected := rejected
		_, err = service.RecordHeartbeat(ctx, userID, HeartbeatCreate{SessionID: session.ID.Hex(), Timestamp: &rejected})
		assert.True(t, apperror.IsValidation(err), "timestamp %s", rejected)
	}

	timestamp := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	heartbeat, err := service.RecordHeartbeat(ctx, userID, HeartbeatCreate{SessionID: session.ID.Hex(), Timestamp: &timestamp, IsIdle: true})
	require.NoError(t, err)
	assert.Equal(t, timestamp, heartbeat.Timestamp)
	assert.True(t, heartbeat.IsIdle)

	latest, err := repository.FindLatestHeartbeat(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, heartbeat.ID, latest.ID)

	_, err = service.EndSession(ctx, userID, SessionEnd{SessionID: session.ID.Hex()})
	require.NoError(t, err)

	_, err = service.RecordHeartbeat(ctx, userID, HeartbeatCreate{SessionID: session.ID.Hex()})
	assert.True(t, apperror.IsValidation(err))
}
