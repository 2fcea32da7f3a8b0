// Package transport exposes the session and activity runtime over plain
// HTTP. Clients poll status endpoints for updates; there is no push channel.
package transport

import (
	"log/slog"
	"net/http"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/domain/participant"
	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/crowdkit/crowdkit/internal/domain/status"
	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/go-chi/chi/v5"
)

// Services bundles the domain services the HTTP surface exposes.
type Services struct {
	Sessions     *session.Service
	Participants *participant.Service
	Activities   *activity.Service
	Responses    *response.Service
	Status       *status.Service
	Events       *eventlog.Service
	Registry     *registry.Registry
}

// Server wires HTTP handlers.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewServer creates the HTTP router.
func NewServer(svc Services, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(IdentityMiddleware)

	r.Get("/health", srv.handleHealth)

	r.Get("/activity-types", srv.handleListTypes)
	r.Get("/activity-types/{typeID}/schema", srv.handleTypeSchema)
	r.Post("/activity-types/{typeID}/validate", srv.handleValidateConfig)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", srv.handleCreateSession)
		r.Get("/", srv.handleListSessions)
		r.Post("/join", srv.handleJoinSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", srv.handleGetSession)
			r.Delete("/", srv.handleDeleteSession)
			r.Post("/end", srv.handleEndSession)
			r.Get("/status", srv.handleSessionStatus)
			r.Get("/events", srv.handleSessionEvents)
			r.Get("/participants", srv.handleListParticipants)
			r.Post("/activities", srv.handleCreateActivity)
			r.Get("/activities", srv.handleListActivities)
		})
	})

	r.Route("/participants/{participantID}", func(r chi.Router) {
		r.Post("/heartbeat", srv.handleHeartbeat)
		r.Delete("/", srv.handleRemoveParticipant)
	})

	r.Route("/activities/{activityID}", func(r chi.Router) {
		r.Get("/", srv.handleGetActivity)
		r.Patch("/", srv.handleUpdateActivity)
		r.Delete("/", srv.handleDeleteActivity)
		r.Post("/transition", srv.handleTransition)
		r.Get("/status", srv.handleActivityStatus)
		r.Get("/results", srv.handleActivityResults)
		r.Post("/responses", srv.handleSubmitResponse)
		r.Get("/responses", srv.handleListResponses)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
