package transport

import (
	"net/http"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Registry.List())
}

func (s *Server) handleTypeSchema(w http.ResponseWriter, r *http.Request) {
	def, err := s.svc.Registry.Resolve(chi.URLParam(r, "typeID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, def.Schema.Describe())
}

// handleValidateConfig runs a dry-run configuration check. The response is
// 200 whether or not the configuration is valid; failure lives in the body.
func (s *Server) handleValidateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg map[string]any
	if err := decodeJSON(r, &cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	result, err := s.svc.Activities.ValidateConfig(chi.URLParam(r, "typeID"), cfg)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createActivityRequest struct {
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Configuration map[string]any `json:"configuration"`
	Metadata      map[string]any `json:"activity_metadata"`
	OrderIndex    int            `json:"order_index"`
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	act, err := s.svc.Activities.Create(r.Context(), activity.CreateRequest{
		SessionID:     chi.URLParam(r, "sessionID"),
		Type:          req.Type,
		Title:         req.Title,
		Description:   req.Description,
		Configuration: req.Configuration,
		Metadata:      req.Metadata,
		OrderIndex:    req.OrderIndex,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, act)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	acts, err := s.svc.Activities.ListBySession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	act, err := s.svc.Activities.Get(r.Context(), chi.URLParam(r, "activityID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, act)
}

type updateActivityRequest struct {
	Title         *string        `json:"title"`
	Description   *string        `json:"description"`
	Configuration map[string]any `json:"configuration"`
	Metadata      map[string]any `json:"activity_metadata"`
	OrderIndex    *int           `json:"order_index"`
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req updateActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	act, err := s.svc.Activities.Update(r.Context(), chi.URLParam(r, "activityID"), activity.UpdateRequest{
		Title:         req.Title,
		Description:   req.Description,
		Configuration: req.Configuration,
		Metadata:      req.Metadata,
		OrderIndex:    req.OrderIndex,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, act)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Activities.Delete(r.Context(), chi.URLParam(r, "activityID")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transitionRequest struct {
	TargetState string `json:"target_state"`
	Reason      string `json:"reason"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	act, err := s.svc.Activities.Transition(r.Context(),
		chi.URLParam(r, "activityID"), activity.State(req.TargetState), req.Reason)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, act)
}

func (s *Server) handleActivityStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Status.Activity(r.Context(),
		chi.URLParam(r, "activityID"), PersonaFromContext(r.Context()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleActivityResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.svc.Status.Results(r.Context(),
		chi.URLParam(r, "activityID"), PersonaFromContext(r.Context()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type submitResponseRequest struct {
	Data map[string]any `json:"response_data"`
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	participantID, ok := ParticipantIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing X-Participant-Id header"})
		return
	}

	var req submitResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	resp, err := s.svc.Responses.Submit(r.Context(),
		chi.URLParam(r, "activityID"), participantID, req.Data)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	if PersonaFromContext(r.Context()) != registry.PersonaAdmin {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "raw responses are admin-only"})
		return
	}

	list, err := s.svc.Responses.ListByActivity(r.Context(),
		chi.URLParam(r, "activityID"), response.ListOptions{})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
