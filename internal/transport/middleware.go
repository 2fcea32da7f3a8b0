package transport

import (
	"context"
	"net/http"

	"github.com/crowdkit/crowdkit/internal/registry"
)

type personaKey struct{}
type participantKey struct{}

// PersonaFromContext returns the requesting persona. Defaults to participant
// when the header was absent.
func PersonaFromContext(ctx context.Context) registry.Persona {
	if p, ok := ctx.Value(personaKey{}).(registry.Persona); ok {
		return p
	}
	return registry.PersonaParticipant
}

// ParticipantIDFromContext returns the caller's participant id, if present.
func ParticipantIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(participantKey{}).(string)
	return id, ok && id != ""
}

// IdentityMiddleware extracts X-Persona and X-Participant-Id and stores them
// in context. An unknown persona is rejected outright rather than silently
// downgraded.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if raw := r.Header.Get("X-Persona"); raw != "" {
			persona := registry.Persona(raw)
			if !registry.ValidPersona(persona) {
				http.Error(w, "invalid persona", http.StatusBadRequest)
				return
			}
			ctx = context.WithValue(ctx, personaKey{}, persona)
		}

		if id := r.Header.Get("X-Participant-Id"); id != "" {
			ctx = context.WithValue(ctx, participantKey{}, id)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
