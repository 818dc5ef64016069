package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/chefaraga123/footium-player-chat-backend/internal/stream"
)

// handleMatchStream registers the user, starts both connectors for the match
// and relays their progress frames as server-sent events. The stream ends
// when the pipeline closes or the client disconnects, whichever first; a
// disconnect cancels the upstream subscriptions through the request context.
func (s *Server) handleMatchStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "missing userId")
		return
	}
	matchID := r.URL.Query().Get("matchId")
	if matchID == "" {
		// Rejected before any subscription attempt.
		s.writeError(w, http.StatusBadRequest, "missing matchId")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sess := s.store.Ensure(userID)
	ctx := r.Context()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames := make(chan stream.Frame, 16)
	emit := func(f stream.Frame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(frames)
		if err := s.pipeline.Run(ctx, matchID, sess, emit); err != nil && ctx.Err() == nil {
			emit(stream.Frame{Type: stream.FrameError, MatchID: matchID, Data: err.Error()})
		}
	}()

	s.log.WithFields(logrus.Fields{"userId": userID, "matchId": matchID}).Info("match stream opened")
	defer s.log.WithFields(logrus.Fields{"userId": userID, "matchId": matchID}).Info("match stream closed")

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := writeSSE(w, frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, frame stream.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.Type, data)
	return err
}
