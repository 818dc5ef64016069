package session

import (
	"sync"
	"time"

	"github.com/chefaraga123/footium-player-chat-backend/internal/match"
)

// Team is the session's view of one side of the fixture.
type Team struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	WinCount int    `json:"winCount"`
}

// Session is one user's live match aggregate. Both connectors for the user's
// active match mutate it concurrently, so the fields are split into three
// independently locked groups: team metadata, derived events, and the
// digest. A reader never observes a half-written group.
type Session struct {
	userID string

	metaMu    sync.RWMutex
	fixtureID string
	home      Team
	away      Team

	eventsMu      sync.RWMutex
	goals         []match.Goal
	cards         []match.Card
	activePlayers []match.ActivePlayer

	digestMu    sync.RWMutex
	matchDigest string

	touchMu     sync.Mutex
	lastTouched time.Time
}

func newSession(userID string) *Session {
	return &Session{
		userID:      userID,
		lastTouched: time.Now(),
	}
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) touch() {
	s.touchMu.Lock()
	s.lastTouched = time.Now()
	s.touchMu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.touchMu.Lock()
	defer s.touchMu.Unlock()
	return s.lastTouched.Before(cutoff)
}

// SetTeams replaces the fixture and team metadata group.
func (s *Session) SetTeams(fixtureID string, home, away Team) {
	s.metaMu.Lock()
	s.fixtureID = fixtureID
	s.home = home
	s.away = away
	s.metaMu.Unlock()
	s.touch()
}

// Teams returns the current fixture id and team metadata.
func (s *Session) Teams() (fixtureID string, home, away Team) {
	s.metaMu.RLock()
	defer s.metaMu.RUnlock()
	return s.fixtureID, s.home, s.away
}

// TeamName maps a club id to the session's home/away name. The second
// return is false when the id matches neither side.
func (s *Session) TeamName(clubID string) (string, bool) {
	s.metaMu.RLock()
	defer s.metaMu.RUnlock()
	switch clubID {
	case s.home.ID:
		return s.home.Name, s.home.ID != ""
	case s.away.ID:
		return s.away.Name, s.away.ID != ""
	}
	return "", false
}

// ReplaceEvents installs the derived view of the most recently processed
// snapshot. Goals, cards and roster are replaced wholesale, never appended:
// they are a point-in-time view, not an accumulating log.
func (s *Session) ReplaceEvents(goals []match.Goal, cards []match.Card, players []match.ActivePlayer) {
	s.eventsMu.Lock()
	s.goals = append([]match.Goal(nil), goals...)
	s.cards = append([]match.Card(nil), cards...)
	s.activePlayers = append([]match.ActivePlayer(nil), players...)
	s.eventsMu.Unlock()
	s.touch()
}

// Events returns copies of the derived event view.
func (s *Session) Events() (goals []match.Goal, cards []match.Card, players []match.ActivePlayer) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return append([]match.Goal(nil), s.goals...),
		append([]match.Card(nil), s.cards...),
		append([]match.ActivePlayer(nil), s.activePlayers...)
}

// SetDigest overwrites the narrative digest.
func (s *Session) SetDigest(text string) {
	s.digestMu.Lock()
	s.matchDigest = text
	s.digestMu.Unlock()
	s.touch()
}

func (s *Session) Digest() string {
	s.digestMu.RLock()
	defer s.digestMu.RUnlock()
	return s.matchDigest
}

// View is a JSON-ready snapshot of the whole session.
type View struct {
	FixtureID     string               `json:"fixtureId"`
	HomeTeam      Team                 `json:"homeTeam"`
	AwayTeam      Team                 `json:"awayTeam"`
	Goals         []match.Goal         `json:"goals"`
	Cards         []match.Card         `json:"cards"`
	ActivePlayers []match.ActivePlayer `json:"activePlayers"`
	MatchDigest   string               `json:"matchDigest"`
}

// Snapshot assembles a consistent per-group view. Groups are read under
// their own locks, so cross-group consistency is only point-in-time; that
// is the contract both connectors write under.
func (s *Session) Snapshot() View {
	fixtureID, home, away := s.Teams()
	goals, cards, players := s.Events()
	return View{
		FixtureID:     fixtureID,
		HomeTeam:      home,
		AwayTeam:      away,
		Goals:         goals,
		Cards:         cards,
		ActivePlayers: players,
		MatchDigest:   s.Digest(),
	}
}
