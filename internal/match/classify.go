package match

import (
	"context"
	"strconv"

	"github.com/chefaraga123/footium-player-chat-backend/internal/footium"
)

// Goal is a fully named goal record derived from a snapshot key event.
type Goal struct {
	Team       string `json:"team"`
	TeamName   string `json:"team_name"`
	Scorer     string `json:"goal_scorer"`
	ScorerName string `json:"goal_scorer_name"`
	Time       int64  `json:"goal_time"`
}

// Card is a fully named booking record derived from a snapshot key event.
type Card struct {
	Team         string `json:"team"`
	TeamName     string `json:"team_name"`
	Receiver     string `json:"card_receiver"`
	ReceiverName string `json:"card_receiver_name"`
	Time         int64  `json:"card_time"`
}

// ActivePlayer is one enriched roster entry.
type ActivePlayer struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	ClubID     string `json:"club_id"`
}

// Classify turns a raw key event into a typed Goal or Card, resolving the
// involved player and club names. Events with an unknown discriminator yield
// (nil, nil). Resolution failures degrade to empty names; the record is
// still produced so counts stay consistent with the raw event list.
func Classify(ctx context.Context, ev KeyEvent, resolver footium.Resolver) (*Goal, *Card) {
	switch ev.Type {
	case eventTypeGoal:
		playerName, teamName := resolveNames(ctx, resolver, ev.ScorerPlayerID, ev.ClubID)
		return &Goal{
			Team:       ev.ClubID,
			TeamName:   teamName,
			Scorer:     ev.ScorerPlayerID,
			ScorerName: playerName,
			Time:       ev.Timestamp,
		}, nil
	case eventTypeCard:
		playerName, teamName := resolveNames(ctx, resolver, ev.PlayerID, ev.ClubID)
		return nil, &Card{
			Team:         ev.ClubID,
			TeamName:     teamName,
			Receiver:     ev.PlayerID,
			ReceiverName: playerName,
			Time:         ev.Timestamp,
		}
	default:
		return nil, nil
	}
}

func resolveNames(ctx context.Context, resolver footium.Resolver, playerID, clubID string) (string, string) {
	playerName := ""
	if playerID != "" {
		if p, err := resolver.ResolvePlayer(ctx, playerID); err == nil {
			playerName = p.FullName
		}
	}
	teamName := ""
	if clubID != "" {
		if c, err := resolver.ResolveClub(ctx, clubID); err == nil {
			teamName = c.Name
		}
	}
	return playerName, teamName
}

// EnrichPlayer resolves one roster entry into an ActivePlayer. The club id
// comes from the resolver answer, falling back to empty when unknown.
func EnrichPlayer(ctx context.Context, playerID string, resolver footium.Resolver) ActivePlayer {
	ap := ActivePlayer{PlayerID: playerID}
	p, err := resolver.ResolvePlayer(ctx, playerID)
	if err != nil {
		return ap
	}
	ap.PlayerName = p.FullName
	if p.ClubID != 0 {
		ap.ClubID = strconv.Itoa(p.ClubID)
	}
	return ap
}
