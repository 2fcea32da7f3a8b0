package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/participant"
	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/crowdkit/crowdkit/internal/registry"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors onto HTTP statuses. Transition refusals and
// configuration failures carry structured detail so clients can render
// affordances instead of a bare message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var transitionErr *activity.TransitionError
	if errors.As(err, &transitionErr) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":             transitionErr.Error(),
			"from":              transitionErr.From,
			"to":                transitionErr.To,
			"valid_transitions": transitionErr.Valid,
		})
		return
	}

	var configErr *activity.ConfigurationError
	if errors.As(err, &configErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      configErr.Error(),
			"validation": configErr.Result,
		})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeJSON(w, status, map[string]any{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, activity.ErrNotFound),
		errors.Is(err, activity.ErrSessionNotFound),
		errors.Is(err, participant.ErrNotFound),
		errors.Is(err, registry.ErrUnknownType):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, participant.ErrInvalidInput),
		errors.Is(err, response.ErrInvalidInput),
		errors.Is(err, response.ErrInvalidResponse):
		return http.StatusBadRequest
	case errors.Is(err, participant.ErrNameTaken),
		errors.Is(err, activity.ErrOrderIndexTaken),
		errors.Is(err, response.ErrDuplicateResponse),
		errors.Is(err, activity.ErrNotDraft):
		return http.StatusConflict
	case errors.Is(err, session.ErrEnded),
		errors.Is(err, participant.ErrSessionFull),
		errors.Is(err, response.ErrActivityNotActive),
		errors.Is(err, response.ErrResponseLimit):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrTypeUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}
