package stream

import (
	"errors"
	"time"
)

// ErrMissingMatchID rejects a connector start before any subscription is
// attempted.
var ErrMissingMatchID = errors.New("missing match identifier")

// Frame is one unit of connector progress relayed to the client.
type Frame struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
	Data    any    `json:"data,omitempty"`
}

// Frame types emitted by the connectors.
const (
	FrameSnapshot = "snapshot"
	FrameEvents   = "events"
	FrameClosed   = "closed"
	FrameError    = "error"
)

// EmitFunc receives connector progress frames. Implementations must be safe
// for concurrent use; both connectors emit on it.
type EmitFunc func(Frame)

// Limits bound a connector's consumption: a fixed number of upstream
// messages and a hard wall-clock deadline. MaxMessages reproduces the
// upstream sampling window; it is not a match-completion signal.
type Limits struct {
	MaxMessages int
	MaxDuration time.Duration
}
