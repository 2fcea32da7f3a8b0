package transport

import (
	"net/http"

	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/go-chi/chi/v5"
)

type createSessionRequest struct {
	Title           string `json:"title"`
	MaxParticipants int    `json:"max_participants"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	sess, err := s.svc.Sessions.Create(r.Context(), session.CreateRequest{
		Title:           req.Title,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.Sessions.List(r.Context(), 0, 0)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	// Codes are an admin concern; listings never leak them.
	out := make([]session.Session, len(sessions))
	for i, sess := range sessions {
		sess.AdminCode = ""
		out[i] = sess
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if PersonaFromContext(r.Context()) != registry.PersonaAdmin {
		sess.AdminCode = ""
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Sessions.End(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.svc.Sessions.Status(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.Events.List(r.Context(), chi.URLParam(r, "sessionID"), eventlog.ListOptions{})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type joinSessionRequest struct {
	JoinCode    string `json:"join_code"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	var req joinSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	p, err := s.svc.Participants.Join(r.Context(), req.JoinCode, req.DisplayName)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Participants.ListBySession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Participants.Heartbeat(r.Context(), chi.URLParam(r, "participantID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Participants.Remove(r.Context(), chi.URLParam(r, "participantID")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
