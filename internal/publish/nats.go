package publish

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Conn is the part of *nats.Conn the sink uses.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSSink publishes each event on a single subject.
type NATSSink struct {
	conn    Conn
	subject string
}

// NewNATSSink connects to url.
func NewNATSSink(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(url,
		nats.Name("airinsights-publisher"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATSSink{conn: nc, subject: subject}, nil
}

// NewNATSSinkWithConn wraps an established connection.
func NewNATSSinkWithConn(conn Conn, subject string) *NATSSink {
	return &NATSSink{conn: conn, subject: subject}
}

func (s *NATSSink) Publish(ctx context.Context, event SnapshotEvent) error {
	body, err := event.Encode()
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.subject, body); err != nil {
		return fmt.Errorf("nats publish %s: %w", event.ID, err)
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush %s: %w", event.ID, err)
	}
	return nil
}

func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
