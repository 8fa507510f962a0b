package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DialNATS connects to a NATS server and keeps reconnecting forever.
func DialNATS(url, name string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// NATSSource subscribes to a subject. With a queue group set, messages are
// shared between workers in the group.
type NATSSource struct {
	Conn    *nats.Conn
	Subject string
	Queue   string
	Buffer  int // Channel capacity. Default 256.
}

// Messages subscribes and forwards message payloads until ctx is
// cancelled.
func (s *NATSSource) Messages(ctx context.Context) (<-chan []byte, error) {
	size := s.Buffer
	if size <= 0 {
		size = 256
	}
	in := make(chan *nats.Msg, size)

	var sub *nats.Subscription
	var err error
	if s.Queue != "" {
		sub, err = s.Conn.ChanQueueSubscribe(s.Subject, s.Queue, in)
	} else {
		sub, err = s.Conn.ChanSubscribe(s.Subject, in)
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", s.Subject, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer func() { _ = sub.Unsubscribe() }()
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-in:
				select {
				case out <- m.Data:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// NATSSink republishes processed reports on a subject, one message per
// report.
type NATSSink struct {
	Conn    *nats.Conn
	Subject string
}

func (s NATSSink) Name() string { return "nats" }

func (s NATSSink) Write(ctx context.Context, batch []Processed) error {
	for _, p := range batch {
		data, err := p.marshal()
		if err != nil {
			return fmt.Errorf("serialize report %s: %w", p.Record.ID, err)
		}
		if err := s.Conn.Publish(s.Subject, data); err != nil {
			return fmt.Errorf("publish %s: %w", s.Subject, err)
		}
	}
	return s.Conn.FlushWithContext(ctx)
}
