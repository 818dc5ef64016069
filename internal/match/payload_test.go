package match

import "testing"

func TestDecodeSnapshot(t *testing.T) {
	data := []byte(`{
		"state": {
			"homeTeam": {"clubId": "8", "stats": {"wins": 3}},
			"awayTeam": {"clubId": "3", "stats": {"wins": 1}},
			"players": {"77": {}, "12": {}},
			"keyEvents": [
				{"type": 0, "scorerPlayerId": "77", "clubId": "8", "timestamp": 1043}
			]
		}
	}`)

	s, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if s.State == nil {
		t.Fatal("State is nil for populated payload")
	}
	if s.State.HomeTeam.ClubID != "8" || s.State.HomeTeam.Stats.Wins != 3 {
		t.Errorf("homeTeam = %+v", s.State.HomeTeam)
	}
	if len(s.State.Players) != 2 {
		t.Errorf("players = %d, want 2", len(s.State.Players))
	}
	if len(s.State.KeyEvents) != 1 || s.State.KeyEvents[0].ScorerPlayerID != "77" {
		t.Errorf("keyEvents = %+v", s.State.KeyEvents)
	}
}

func TestDecodeSnapshotEmpty(t *testing.T) {
	s, err := DecodeSnapshot([]byte(`{}`))
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if s.State != nil {
		t.Errorf("State = %+v, want nil for empty payload", s.State)
	}
}

func TestDecodeFrames(t *testing.T) {
	data := []byte(`[
		{"eventTypeAsString": "Pass", "teamInPossession": "8", "playerInPossession": "77"},
		{"eventTypeAsString": "Shot", "teamInPossession": "3", "playerInPossession": "12"}
	]`)

	frames, err := DecodeFrames(data)
	if err != nil {
		t.Fatalf("DecodeFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0].EventType != "Pass" || frames[1].TeamInPossession != "3" {
		t.Errorf("frames = %+v", frames)
	}
}

func TestDecodeFramesHeartbeat(t *testing.T) {
	frames, err := DecodeFrames([]byte(`[]`))
	if err != nil {
		t.Fatalf("DecodeFrames: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("heartbeat decoded to %d frames", len(frames))
	}
}
