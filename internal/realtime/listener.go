package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

const reconnectBackoff = 2 * time.Second

// Listener implements Feed over PostgreSQL LISTEN/NOTIFY. Database
// triggers on the social tables publish JSON payloads shaped like Event
// to a single notification channel.
type Listener struct {
	url     string
	channel string
	log     *logrus.Logger

	events  chan Event
	resyncs chan struct{}
	cancel  context.CancelFunc
}

// Listen starts a listener on the given notification channel and begins
// consuming in the background. Close stops it.
func Listen(ctx context.Context, url, channel string, log *logrus.Logger) *Listener {
	ctx, cancel := context.WithCancel(ctx)
	l := &Listener{
		url:     url,
		channel: channel,
		log:     log,
		events:  make(chan Event, 64),
		resyncs: make(chan struct{}, 1),
		cancel:  cancel,
	}
	go l.run(ctx)
	return l
}

// Events returns the change event stream.
func (l *Listener) Events() <-chan Event { return l.events }

// Resyncs signals each successful reconnection after a dropped connection.
func (l *Listener) Resyncs() <-chan struct{} { return l.resyncs }

// Close stops the listener and closes the event stream.
func (l *Listener) Close() { l.cancel() }

func (l *Listener) run(ctx context.Context) {
	defer close(l.events)

	first := true
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := pgx.Connect(ctx, l.url)
		if err != nil {
			l.log.WithError(err).Warn("change feed connect failed, retrying")
			if !sleep(ctx, reconnectBackoff) {
				return
			}
			continue
		}

		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
			l.log.WithError(err).Warn("change feed LISTEN failed, retrying")
			conn.Close(ctx)
			if !sleep(ctx, reconnectBackoff) {
				return
			}
			continue
		}

		if !first {
			// Notifications may have been lost while disconnected; tell
			// consumers to resync from an authoritative read.
			select {
			case l.resyncs <- struct{}{}:
			default:
			}
		}
		first = false
		l.log.WithField("channel", l.channel).Info("change feed listening")

		l.consume(ctx, conn)
		conn.Close(context.Background())

		if !sleep(ctx, reconnectBackoff) {
			return
		}
	}
}

func (l *Listener) consume(ctx context.Context, conn *pgx.Conn) {
	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				l.log.WithError(err).Warn("change feed connection lost")
			}
			return
		}

		var ev Event
		if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
			l.log.WithError(err).Warn("malformed change feed payload dropped")
			continue
		}

		select {
		case l.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
