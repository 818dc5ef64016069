package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/chefaraga123/footium-player-chat-backend/internal/session"
	"github.com/chefaraga123/footium-player-chat-backend/internal/stream"
)

// LookupClient is the read-side of the Footium API used by the passthrough
// routes.
type LookupClient interface {
	ClubDetail(ctx context.Context, clubID string) (json.RawMessage, error)
	ClubPlayers(ctx context.Context, clubID string) (json.RawMessage, error)
	PlayerDetail(ctx context.Context, playerID string) (json.RawMessage, error)
}

// PersonaChat answers /api/query questions in the post-match player persona.
type PersonaChat interface {
	PersonaReply(ctx context.Context, input string) (string, error)
}

// MatchPipeline runs both live connectors for one (user, match) pair.
type MatchPipeline interface {
	Run(ctx context.Context, matchID string, sess *session.Session, emit stream.EmitFunc) error
}

type Server struct {
	store    *session.Store
	lookups  LookupClient
	chat     PersonaChat
	pipeline MatchPipeline
	log      *logrus.Logger
}

func New(store *session.Store, lookups LookupClient, chat PersonaChat, pipeline MatchPipeline, log *logrus.Logger) *Server {
	return &Server{
		store:    store,
		lookups:  lookups,
		chat:     chat,
		pipeline: pipeline,
		log:      log,
	}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/club", s.cors(s.handleClub))
	mux.HandleFunc("/api/club-players", s.cors(s.handleClubPlayers))
	mux.HandleFunc("/api/player", s.cors(s.handlePlayer))
	mux.HandleFunc("/api/query", s.cors(s.handleQuery))
	mux.HandleFunc("/api/match/stream", s.cors(s.handleMatchStream))
	mux.HandleFunc("/api/match/digest", s.cors(s.handleMatchDigest))
	mux.HandleFunc("/api/health", s.cors(s.handleHealth))
}

// cors mirrors the permissive policy of the original backend.
func (s *Server) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleClub(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, r.URL.Query().Get("id"), s.lookups.ClubDetail)
}

func (s *Server) handleClubPlayers(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, r.URL.Query().Get("id"), s.lookups.ClubPlayers)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, r.URL.Query().Get("playerId"), s.lookups.PlayerDetail)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id string, fn func(context.Context, string) (json.RawMessage, error)) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	data, err := fn(r.Context(), id)
	if err != nil {
		s.log.WithFields(logrus.Fields{"id": id, "error": err}).Error("lookup failed")
		s.writeError(w, http.StatusInternalServerError, "error querying GraphQL API")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	output, err := s.chat.PersonaReply(r.Context(), body.Input)
	if err != nil {
		s.log.WithError(err).Error("persona reply failed")
		s.writeError(w, http.StatusInternalServerError, "error querying OpenAI API")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"output": output})
}

func (s *Server) handleMatchDigest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	sess, err := s.store.Get(userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "no session for user")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}

	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}
