package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Subscription is one cancellable upstream stream. Messages carries raw
// payloads in arrival order; it is closed when the upstream completes or
// fails, after which Err reports the terminal error, if any. Close tears the
// stream down and is safe to call more than once.
type Subscription interface {
	Messages() <-chan []byte
	Err() error
	Close()
}

// SubscribeFunc opens a subscription for one match. Connectors take this
// instead of a concrete dialer so tests can inject fakes.
type SubscribeFunc func(ctx context.Context, matchID string) (Subscription, error)

// Stream identifiers for the two upstream feeds.
const (
	streamPartialState = "partial_state"
	streamFrameDeltas  = "frame_deltas"
)

// wsEnvelope is the graphql-transport-ws style framing the live API speaks:
// connection_init/connection_ack, then subscribe and next/complete/error.
type wsEnvelope struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	Stream  string `json:"stream"`
	MatchID string `json:"matchId"`
}

// Dialer opens live subscriptions against the upstream websocket endpoint.
type Dialer struct {
	url         string
	dialTimeout time.Duration
	log         *logrus.Logger
}

func NewDialer(url string, dialTimeout time.Duration, log *logrus.Logger) *Dialer {
	return &Dialer{url: url, dialTimeout: dialTimeout, log: log}
}

// SubscribePartialState opens the full-state snapshot stream for a match.
func (d *Dialer) SubscribePartialState(ctx context.Context, matchID string) (Subscription, error) {
	return d.subscribe(ctx, streamPartialState, matchID)
}

// SubscribeFrameDeltas opens the frame-delta stream for a match.
func (d *Dialer) SubscribeFrameDeltas(ctx context.Context, matchID string) (Subscription, error) {
	return d.subscribe(ctx, streamFrameDeltas, matchID)
}

func (d *Dialer) subscribe(ctx context.Context, stream, matchID string) (Subscription, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.dialTimeout}
	conn, _, err := dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial upstream: %w", err)
	}

	deadline := time.Now().Add(d.dialTimeout)
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	if err := conn.WriteJSON(wsEnvelope{Type: "connection_init"}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connection_init: %w", err)
	}
	var ack wsEnvelope
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read connection_ack: %w", err)
	}
	if ack.Type != "connection_ack" {
		conn.Close()
		return nil, fmt.Errorf("unexpected handshake reply %q", ack.Type)
	}

	payload, err := json.Marshal(subscribePayload{Stream: stream, MatchID: matchID})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.WriteJSON(wsEnvelope{ID: "1", Type: "subscribe", Payload: payload}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	sub := &wsSubscription{
		conn: conn,
		msgs: make(chan []byte, 8),
		done: make(chan struct{}),
		log:  d.log,
	}
	go sub.readLoop()
	go sub.watchContext(ctx)
	return sub, nil
}

type wsSubscription struct {
	conn *websocket.Conn
	msgs chan []byte
	done chan struct{}
	log  *logrus.Logger

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

func (s *wsSubscription) Messages() <-chan []byte { return s.msgs }

func (s *wsSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *wsSubscription) Close() {
	s.closeOnce.Do(func() {
		// Release a read loop parked on a full msgs channel before the
		// socket goes away.
		close(s.done)
		// Best effort: tell upstream we are done before dropping the socket.
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.conn.Close()
	})
}

func (s *wsSubscription) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *wsSubscription) readLoop() {
	defer close(s.msgs)
	for {
		var env wsEnvelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.setErr(err)
			}
			return
		}

		switch env.Type {
		case "next":
			select {
			case s.msgs <- env.Payload:
			case <-s.done:
				return
			}
		case "complete":
			return
		case "error":
			s.setErr(fmt.Errorf("upstream subscription error: %s", env.Payload))
			return
		case "ping":
			s.conn.WriteJSON(wsEnvelope{Type: "pong"})
		default:
			s.log.WithField("type", env.Type).Debug("ignoring upstream frame")
		}
	}
}

func (s *wsSubscription) watchContext(ctx context.Context) {
	<-ctx.Done()
	s.Close()
}
