package events

import (
	"context"
	"encoding/json"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"sync"
	"testing"
	"time"
)

type recordingConnection struct {
	mutex    sync.Mutex
	messages []*nats.Msg
	err      error
	drained  bool
}

func (c *recordingConnection) PublishMsg(msg *nats.Msg) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return c.err
	}

	c.messages = append(c.messages, msg)
	return nil
}

func (c *recordingConnection) Drain() error {
	c.drained = true
	return nil
}

func TestNATSPublisher_OnNotify(t *testing.T) {
	now = func() time.Time { return time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC) }
	defer func() { now = time.Now }()

	conn := &recordingConnection{}
	publisher := NATSPublisher{Logger: logger.NewNop(), Connection: conn}

	entry := activity.WorkLogEntry{Date: "2026-03-31", TotalTrackedMinutes: 480}
	publisher.OnNotify(&activity.Event{
		Kind:     activity.EventWorkLogCreated,
		UserID:   "user-1",
		Revision: 3,
		WorkLog:  &entry,
	})

	require.Len(t, conn.messages, 1)
	msg := conn.messages[0]
	assert.Equal(t, "tracktivity.activity.work_log.created", msg.Subject)

	message := Message{}
	require.NoError(t, json.Unmarshal(msg.Data, &message))
	assert.NotEmpty(t, message.ID)
	assert.Equal(t, message.ID, msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "user-1", message.UserID)
	assert.Equal(t, int64(3), message.Revision)
	assert.Equal(t, "2026-03-31", message.WorkLog.Date)
	assert.Nil(t, message.IdleEpisode)
	assert.True(t, message.OccurredAt.Equal(now()))
}

func TestNATSPublisher_Subject(t *testing.T) {
	publisher := NATSPublisher{SubjectPrefix: "staging.activity"}
	assert.Equal(t, "staging.activity.idle_episode.created", publisher.Subject(activity.EventIdleEpisodeCreated))
}

func TestNATSPublisher_PublishFailureIsSwallowed(t *testing.T) {
	conn := &recordingConnection{err: errors.New("connection closed")}
	publisher := NATSPublisher{Logger: logger.NewNop(), Connection: conn}

	assert.NotPanics(t, func() {
		publisher.OnNotify(&activity.Event{Kind: activity.EventWorkLogUpdated, UserID: "user-1"})
	})
	assert.Empty(t, conn.messages)

	require.NoError(t, publisher.Close())
	assert.True(t, conn.drained)
}

func TestNATSPublisher_ReceivesRepositoryEvents(t *testing.T) {
	conn := &recordingConnection{}
	publisher := &NATSPublisher{Logger: logger.NewNop(), Connection: conn}

	repository := activity.NewMockRepository()
	repository.Subscribe(publisher)

	episode := activity.IdleEpisode{StartTime: time.Now().Add(-time.Hour), EndTime: time.Now()}
	require.NoError(t, repository.AddIdleEpisode(context.Background(), &episode))

	assert.Eventually(t, func() bool {
		conn.mutex.Lock()
		defer conn.mutex.Unlock()
		return len(conn.messages) == 1
	}, time.Second, 10*time.Millisecond)
}
