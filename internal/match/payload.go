package match

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Event type discriminators used in snapshot key events.
const (
	eventTypeGoal = 0
	eventTypeCard = 2
)

// Snapshot is one message from the partial-state stream: a point-in-time
// view of the match. Payloads may arrive empty (heartbeats).
type Snapshot struct {
	State *SnapshotState `json:"state"`
}

type SnapshotState struct {
	HomeTeam  TeamState                  `json:"homeTeam"`
	AwayTeam  TeamState                  `json:"awayTeam"`
	Players   map[string]json.RawMessage `json:"players"`
	KeyEvents []KeyEvent                 `json:"keyEvents"`
}

type TeamState struct {
	ClubID string    `json:"clubId"`
	Stats  TeamStats `json:"stats"`
}

type TeamStats struct {
	Wins int `json:"wins"`
}

// KeyEvent is a notable in-match occurrence embedded in a snapshot. The
// player id lives in ScorerPlayerID for goals and PlayerID for cards.
type KeyEvent struct {
	Type           int    `json:"type"`
	PlayerID       string `json:"playerId,omitempty"`
	ScorerPlayerID string `json:"scorerPlayerId,omitempty"`
	ClubID         string `json:"clubId"`
	Timestamp      int64  `json:"timestamp"`
}

// FrameEvent is one entry of a frame-delta batch. An empty batch is a valid
// heartbeat.
type FrameEvent struct {
	EventType          string `json:"eventTypeAsString"`
	TeamInPossession   string `json:"teamInPossession"`
	PlayerInPossession string `json:"playerInPossession"`
}

// DecodeSnapshot parses a partial-state stream payload. A nil State means
// the payload carried no usable match state.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeFrames parses a frame-delta stream payload.
func DecodeFrames(data []byte) ([]FrameEvent, error) {
	var frames []FrameEvent
	if err := sonic.Unmarshal(data, &frames); err != nil {
		return nil, err
	}
	return frames, nil
}
