package stream

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/chefaraga123/footium-player-chat-backend/internal/session"
)

// Pipeline starts the snapshot and delta connectors for one (user, match)
// pair. Both connectors share the caller's context: cancelling it (client
// disconnect) tears both subscriptions down; each connector otherwise closes
// independently when its own budget is exhausted.
type Pipeline struct {
	Snapshot *SnapshotConnector
	Delta    *DeltaConnector
	Log      *logrus.Logger
}

// Run blocks until both connectors have closed. The first terminal connector
// error is returned; ErrMissingMatchID is reported before any subscription
// attempt.
func (p *Pipeline) Run(ctx context.Context, matchID string, sess *session.Session, emit EmitFunc) error {
	if matchID == "" {
		return ErrMissingMatchID
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	run := func(name string, fn func(context.Context, string, *session.Session, EmitFunc) error) {
		defer wg.Done()
		err := fn(ctx, matchID, sess, emit)
		if err != nil && ctx.Err() == nil {
			p.Log.WithFields(logrus.Fields{"connector": name, "matchId": matchID, "error": err}).Error("connector failed")
			errs <- err
		}
		emit(Frame{Type: FrameClosed, MatchID: matchID, Data: name})
	}

	wg.Add(2)
	go run("snapshot", p.Snapshot.Run)
	go run("delta", p.Delta.Run)
	wg.Wait()
	close(errs)

	return <-errs
}
