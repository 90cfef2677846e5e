package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// waitTimeout bounds each WaitForNotification call so the receive loop
// periodically returns to drain pending LISTEN/UNLISTEN commands even when
// no NOTIFY arrives.
const waitTimeout = 5 * time.Second

// Notification is one NOTIFY payload delivered on a subscribed channel.
type Notification struct {
	Channel string
	Payload string
}

// Listener owns a single dedicated LISTEN connection per process, grounded
// on the teacher's NotifyListener (pkg/events/listener.go): LISTEN/UNLISTEN
// commands are serialized through a command channel so only the receive
// loop's goroutine ever touches the pgx connection.
type Listener struct {
	pool *pgxpool.Pool
	conn *pgx.Conn

	subMu sync.RWMutex
	subs  map[string]map[chan Notification]struct{}

	cmdCh chan listenCmd
}

type listenCmd struct {
	sql    string
	result chan error
}

// NewListener constructs a Listener. Call Start before Subscribe.
func NewListener(pool *pgxpool.Pool) *Listener {
	return &Listener{
		pool:  pool,
		subs:  make(map[string]map[chan Notification]struct{}),
		cmdCh: make(chan listenCmd, 16),
	}
}

// Start acquires the dedicated connection and begins the receive loop. It
// blocks until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("pubsub: acquire listen connection: %w", err)
	}
	l.conn = conn.Conn()

	go l.receiveLoop(ctx)
	return nil
}

// Subscribe registers ch to receive notifications on channel and issues
// LISTEN if this is the first subscriber.
func (l *Listener) Subscribe(ctx context.Context, channel string, ch chan Notification) error {
	l.subMu.Lock()
	first := len(l.subs[channel]) == 0
	if l.subs[channel] == nil {
		l.subs[channel] = make(map[chan Notification]struct{})
	}
	l.subs[channel][ch] = struct{}{}
	l.subMu.Unlock()

	if !first {
		return nil
	}
	return l.exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize())
}

// Unsubscribe removes ch; if it was the last subscriber for channel, issues
// UNLISTEN.
func (l *Listener) Unsubscribe(ctx context.Context, channel string, ch chan Notification) {
	l.subMu.Lock()
	delete(l.subs[channel], ch)
	empty := len(l.subs[channel]) == 0
	if empty {
		delete(l.subs, channel)
	}
	l.subMu.Unlock()

	if empty {
		if err := l.exec(ctx, "UNLISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			slog.Warn("pubsub: unlisten failed", "channel", channel, "error", err)
		}
	}
}

func (l *Listener) exec(ctx context.Context, sqlText string) error {
	cmd := listenCmd{sql: sqlText, result: make(chan error, 1)}
	select {
	case l.cmdCh <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Listener) receiveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-l.cmdCh:
			_, err := l.conn.Exec(ctx, cmd.sql)
			cmd.result <- err
			continue
		default:
		}

		notifyCtx, cancel := context.WithTimeout(ctx, waitTimeout)
		notification, err := l.conn.WaitForNotification(notifyCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue // timeout: loop back to drain cmdCh and retry
		}

		l.subMu.RLock()
		subs := l.subs[notification.Channel]
		targets := make([]chan Notification, 0, len(subs))
		for ch := range subs {
			targets = append(targets, ch)
		}
		l.subMu.RUnlock()

		for _, ch := range targets {
			select {
			case ch <- Notification{Channel: notification.Channel, Payload: notification.Payload}:
			default:
				slog.Warn("pubsub: subscriber channel full, dropping notification", "channel", notification.Channel)
			}
		}
	}
}
