package stream

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/chefaraga123/footium-player-chat-backend/internal/footium"
	"github.com/chefaraga123/footium-player-chat-backend/internal/match"
	"github.com/chefaraga123/footium-player-chat-backend/internal/session"
	"github.com/chefaraga123/footium-player-chat-backend/internal/sink"
)

// enrichParallelism caps concurrent resolver lookups within one batch.
const enrichParallelism = 8

// SnapshotConnector consumes the partial-state stream for one match and
// writes the derived team metadata, roster and key events into the user's
// session. It closes after Limits are exhausted, on upstream error, or when
// the context is cancelled.
type SnapshotConnector struct {
	subscribe SubscribeFunc
	resolver  footium.Resolver
	publisher sink.Publisher
	limits    Limits
	log       *logrus.Logger
}

func NewSnapshotConnector(subscribe SubscribeFunc, resolver footium.Resolver, publisher sink.Publisher, limits Limits, log *logrus.Logger) *SnapshotConnector {
	if publisher == nil {
		publisher = sink.Discard{}
	}
	return &SnapshotConnector{
		subscribe: subscribe,
		resolver:  resolver,
		publisher: publisher,
		limits:    limits,
		log:       log,
	}
}

// Run drives the connector until a terminal condition. It returns nil on a
// clean close (message budget reached or upstream completed) and the
// terminal error otherwise. No error is retried.
func (c *SnapshotConnector) Run(ctx context.Context, matchID string, sess *session.Session, emit EmitFunc) error {
	if matchID == "" {
		return ErrMissingMatchID
	}

	if c.limits.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.limits.MaxDuration)
		defer cancel()
	}

	sub, err := c.subscribe(ctx, matchID)
	if err != nil {
		return fmt.Errorf("open partial-state stream: %w", err)
	}
	defer sub.Close()

	received := 0
	for received < c.limits.MaxMessages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-sub.Messages():
			if !ok {
				if err := sub.Err(); err != nil {
					return fmt.Errorf("partial-state stream: %w", err)
				}
				return nil
			}
			received++
			c.handleMessage(ctx, matchID, payload, sess, emit, received)
		}
	}
	return nil
}

// handleMessage processes one stream message. Empty or unusable payloads
// count toward the budget but change nothing.
func (c *SnapshotConnector) handleMessage(ctx context.Context, matchID string, payload []byte, sess *session.Session, emit EmitFunc, received int) {
	if len(payload) == 0 {
		return
	}
	snap, err := match.DecodeSnapshot(payload)
	if err != nil {
		c.log.WithFields(logrus.Fields{"matchId": matchID, "error": err}).Warn("undecodable snapshot payload")
		return
	}
	if snap.State == nil {
		return
	}
	state := snap.State

	// All enrichment for the batch runs in one bounded group and is awaited
	// in full before anything is committed to the session.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichParallelism)

	var homeName, awayName string
	g.Go(func() error {
		if club, err := c.resolver.ResolveClub(gctx, state.HomeTeam.ClubID); err == nil {
			homeName = club.Name
		}
		return nil
	})
	g.Go(func() error {
		if club, err := c.resolver.ResolveClub(gctx, state.AwayTeam.ClubID); err == nil {
			awayName = club.Name
		}
		return nil
	})

	playerIDs := make([]string, 0, len(state.Players))
	for id := range state.Players {
		playerIDs = append(playerIDs, id)
	}
	sort.Strings(playerIDs)

	roster := make([]match.ActivePlayer, len(playerIDs))
	for i, id := range playerIDs {
		g.Go(func() error {
			roster[i] = match.EnrichPlayer(gctx, id, c.resolver)
			return nil
		})
	}

	goalSlots := make([]*match.Goal, len(state.KeyEvents))
	cardSlots := make([]*match.Card, len(state.KeyEvents))
	for i, ev := range state.KeyEvents {
		g.Go(func() error {
			goalSlots[i], cardSlots[i] = match.Classify(gctx, ev, c.resolver)
			return nil
		})
	}

	g.Wait()

	goals := make([]match.Goal, 0, len(goalSlots))
	for _, goal := range goalSlots {
		if goal != nil {
			goals = append(goals, *goal)
		}
	}
	cards := make([]match.Card, 0, len(cardSlots))
	for _, card := range cardSlots {
		if card != nil {
			cards = append(cards, *card)
		}
	}

	sess.SetTeams(matchID,
		session.Team{ID: state.HomeTeam.ClubID, Name: homeName, WinCount: state.HomeTeam.Stats.Wins},
		session.Team{ID: state.AwayTeam.ClubID, Name: awayName, WinCount: state.AwayTeam.Stats.Wins},
	)
	sess.ReplaceEvents(goals, cards, roster)
	c.publisher.PublishKeyEvents(matchID, goals, cards)

	c.log.WithFields(logrus.Fields{
		"matchId": matchID,
		"message": received,
		"goals":   len(goals),
		"cards":   len(cards),
		"players": len(roster),
	}).Info("snapshot committed")

	emit(Frame{Type: FrameSnapshot, MatchID: matchID, Data: sess.Snapshot()})
}
