package stream

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chefaraga123/footium-player-chat-backend/internal/match"
	"github.com/chefaraga123/footium-player-chat-backend/internal/narrative"
	"github.com/chefaraga123/footium-player-chat-backend/internal/session"
)

// unknownTeam is the rendered name for a possession id matching neither
// known side of the fixture.
const unknownTeam = "Unknown Team"

// DeltaConnector consumes the frame-delta stream for one match, renders a
// readable event sequence per batch and refreshes the session's narrative
// digest through the generator. Generation failures are non-fatal and leave
// the previous digest in place.
type DeltaConnector struct {
	subscribe SubscribeFunc
	generator narrative.Generator
	limits    Limits
	log       *logrus.Logger
}

func NewDeltaConnector(subscribe SubscribeFunc, generator narrative.Generator, limits Limits, log *logrus.Logger) *DeltaConnector {
	return &DeltaConnector{
		subscribe: subscribe,
		generator: generator,
		limits:    limits,
		log:       log,
	}
}

// Run drives the connector until a terminal condition, with the same
// contract as SnapshotConnector.Run.
func (c *DeltaConnector) Run(ctx context.Context, matchID string, sess *session.Session, emit EmitFunc) error {
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
		return fmt.Errorf("open frame-delta stream: %w", err)
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
					return fmt.Errorf("frame-delta stream: %w", err)
				}
				return nil
			}
			received++
			c.handleBatch(ctx, matchID, payload, sess, emit)
		}
	}
	return nil
}

// handleBatch processes one frame batch. Empty batches are heartbeats: they
// count toward the message budget and nothing else.
func (c *DeltaConnector) handleBatch(ctx context.Context, matchID string, payload []byte, sess *session.Session, emit EmitFunc) {
	if len(payload) == 0 {
		return
	}
	frames, err := match.DecodeFrames(payload)
	if err != nil {
		c.log.WithFields(logrus.Fields{"matchId": matchID, "error": err}).Warn("undecodable frame batch")
		return
	}
	if len(frames) == 0 {
		return
	}

	lines := RenderFrames(frames, sess)
	emit(Frame{Type: FrameEvents, MatchID: matchID, Data: lines})

	text, err := c.generator.Generate(ctx, c.buildPrompt(lines, sess))
	if err != nil {
		c.log.WithFields(logrus.Fields{"matchId": matchID, "error": err}).Warn("digest generation failed, keeping previous digest")
		return
	}
	sess.SetDigest(text)
}

// RenderFrames produces one readable line per event, mapping the possession
// id through the session's current team names.
func RenderFrames(frames []match.FrameEvent, sess *session.Session) []string {
	lines := make([]string, len(frames))
	for i, ev := range frames {
		teamName, ok := sess.TeamName(ev.TeamInPossession)
		if !ok {
			teamName = unknownTeam
		}
		lines[i] = fmt.Sprintf("%s - %s (player %s)", ev.EventType, teamName, ev.PlayerInPossession)
	}
	return lines
}

func (c *DeltaConnector) buildPrompt(lines []string, sess *session.Session) string {
	_, home, away := sess.Teams()

	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s (%d wins) vs %s (%d wins)\n",
		nameOrUnknown(home.Name), home.WinCount, nameOrUnknown(away.Name), away.WinCount)
	b.WriteString("Latest passage of play:\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func nameOrUnknown(name string) string {
	if name == "" {
		return unknownTeam
	}
	return name
}
