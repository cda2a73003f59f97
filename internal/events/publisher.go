package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/easyaudit-api/internal/dto"
)

// DefaultSubject is the NATS subject recorded activities are published on.
const DefaultSubject = "easyaudit.activity.recorded"

// Publisher announces activities after they have been stored.
type Publisher interface {
	Publish(ctx context.Context, activity dto.ActivityResponse) error
}

// RecordedEvent is the message body sent for each stored activity.
type RecordedEvent struct {
	Source   string               `json:"source"`
	Activity dto.ActivityResponse `json:"activity"`
	SentAt   time.Time            `json:"sent_at"`
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
}

// NewNATSPublisher publishes to subject over conn. A nil connection yields a no-op publisher.
func NewNATSPublisher(conn *nats.Conn, subject, nodeID string, logger zerolog.Logger) Publisher {
	if conn == nil {
		return NopPublisher{}
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	return &natsPublisher{
		conn:    conn,
		subject: subject,
		nodeID:  nodeID,
		logger:  logger.With().Str("component", "activity_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(ctx context.Context, activity dto.ActivityResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(RecordedEvent{
		Source:   p.nodeID,
		Activity: activity,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode recorded activity: %w", err)
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	p.logger.Debug().Uint("activity_id", activity.ID).Str("event", activity.Event).Msg("activity published")
	return nil
}

// NopPublisher drops every activity.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, dto.ActivityResponse) error {
	return nil
}

// Connect dials NATS when url is set. An empty url returns a nil connection.
func Connect(url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}
	conn, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1), nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}
