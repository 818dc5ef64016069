package stream

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/chefaraga123/footium-player-chat-backend/internal/footium"
	"github.com/chefaraga123/footium-player-chat-backend/internal/session"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeSubscription replays scripted payloads and records Close calls.
type fakeSubscription struct {
	msgs chan []byte
	err  error

	mu     sync.Mutex
	closed bool
}

func newFakeSubscription(payloads ...[]byte) *fakeSubscription {
	s := &fakeSubscription{msgs: make(chan []byte, len(payloads)+1)}
	for _, p := range payloads {
		s.msgs <- p
	}
	return s
}

func (s *fakeSubscription) Messages() <-chan []byte { return s.msgs }
func (s *fakeSubscription) Err() error              { return s.err }

func (s *fakeSubscription) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *fakeSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSubscription) subscribe(ctx context.Context, matchID string) (Subscription, error) {
	return s, nil
}

// fakeResolver answers lookups from fixed maps.
type fakeResolver struct {
	players map[string]footium.Player
	clubs   map[string]footium.Club
}

func (f *fakeResolver) ResolvePlayer(_ context.Context, id string) (footium.Player, error) {
	return f.players[id], nil
}

func (f *fakeResolver) ResolveClub(_ context.Context, id string) (footium.Club, error) {
	return f.clubs[id], nil
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		players: map[string]footium.Player{
			"77": {FullName: "A. Smith", ClubID: 8},
			"12": {FullName: "B. Jones", ClubID: 3},
		},
		clubs: map[string]footium.Club{
			"8": {Name: "Rovers"},
			"3": {Name: "United"},
		},
	}
}

// fakeGenerator returns a fixed digest or error and records prompts.
type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// frameCollector is a concurrency-safe EmitFunc.
type frameCollector struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *frameCollector) emit(f Frame) {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
}

func (c *frameCollector) byType(typ string) []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Frame
	for _, f := range c.frames {
		if f.Type == typ {
			out = append(out, f)
		}
	}
	return out
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	store := session.NewStore(0, 0, testLogger())
	t.Cleanup(store.Close)
	return store.Ensure("test-user")
}

func rejectSubscribe(t *testing.T) SubscribeFunc {
	return func(ctx context.Context, matchID string) (Subscription, error) {
		t.Error("subscription attempted despite invalid input")
		return nil, nil
	}
}
