package events

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"time"
)

// DefaultSubjectPrefix is the subject prefix activity events are published under
const DefaultSubjectPrefix = "tracktivity.activity"

var now = time.Now

// Connection is the part of a NATS connection the publisher needs
type Connection interface {
	PublishMsg(msg *nats.Msg) error
	Drain() error
}

// Message is the payload of a published activity event
type Message struct {
	ID          string                 `json:"id"`
	Kind        string                 `json:"kind"`
	UserID      string                 `json:"user_id"`
	Revision    int64                  `json:"revision"`
	OccurredAt  time.Time              `json:"occurred_at"`
	WorkLog     *activity.WorkLogEntry `json:"work_log,omitempty"`
	IdleEpisode *activity.IdleEpisode  `json:"idle_episode,omitempty"`
}

// NATSPublisher forwards activity changes to NATS
type NATSPublisher struct {
	Logger        logger.Interface
	Connection    Connection
	SubjectPrefix string
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string, logger logger.Interface) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("tracktivity-backend"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to NATS")
	}

	return &NATSPublisher{Logger: logger, Connection: conn, SubjectPrefix: DefaultSubjectPrefix}, nil
}

// Subject returns the subject an event kind is published on
func (p *NATSPublisher) Subject(kind string) string {
	prefix := p.SubjectPrefix
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	return fmt.Sprintf("%s.%s", prefix, kind)
}

// OnNotify gets called when a work log or idle episode was written
func (p *NATSPublisher) OnNotify(event *activity.Event) {
	message := Message{
		ID:          uuid.NewString(),
		Kind:        event.Kind,
		UserID:      event.UserID,
		Revision:    event.Revision,
		OccurredAt:  now().UTC(),
		WorkLog:     event.WorkLog,
		IdleEpisode: event.IdleEpisode,
	}

	data, err := json.Marshal(&message)
	if err != nil {
		p.Logger.Error("Could not encode activity event", err)
		return
	}

	msg := nats.NewMsg(p.Subject(event.Kind))
	msg.Header.Set(nats.MsgIdHdr, message.ID)
	msg.Data = data

	err = p.Connection.PublishMsg(msg)
	if err != nil {
		p.Logger.Error(fmt.Sprintf("Could not publish %s event", event.Kind), err)
		return
	}

	p.Logger.Debug(fmt.Sprintf("published %s for user %s", event.Kind, event.UserID))
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	return p.Connection.Drain()
}
