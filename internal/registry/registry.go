// Package registry maps activity type identifiers to their versioned
// definitions: a configuration schema, a capability set, and behavior handles.
// Registration happens at process start and is append-only; re-registering an
// id is a configuration error.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/crowdkit/crowdkit/internal/schema"
)

var (
	// ErrUnknownType indicates the activity type was never registered.
	ErrUnknownType = errors.New("unknown activity type")
	// ErrDuplicateType indicates an id was registered twice. Fatal at startup.
	ErrDuplicateType = errors.New("activity type already registered")
	// ErrInvalidDefinition indicates a definition missing required parts.
	ErrInvalidDefinition = errors.New("invalid activity type definition")
	// ErrTypeUnavailable indicates a persisted activity references a type no
	// longer present in the registry. Write paths fail with this; read paths
	// fall back to the persisted data.
	ErrTypeUnavailable = errors.New("activity type unavailable")
)

// Persona identifies which audience is interacting with an activity.
type Persona string

const (
	PersonaAdmin       Persona = "admin"
	PersonaViewer      Persona = "viewer"
	PersonaParticipant Persona = "participant"
)

// ValidPersona reports whether p is one of the known personas.
func ValidPersona(p Persona) bool {
	switch p {
	case PersonaAdmin, PersonaViewer, PersonaParticipant:
		return true
	}
	return false
}

// Response is the slice of a stored submission that aggregation sees.
type Response struct {
	ParticipantID string
	Data          map[string]any
	CreatedAt     time.Time
}

// Handler is the behavior every activity type implements.
type Handler interface {
	// DefaultMetadata returns the type's default activity metadata, merged
	// under any caller-supplied metadata at creation time.
	DefaultMetadata() map[string]any

	// ProcessResponse validates and shapes a participant submission for
	// storage. It returns the processed payload or an error describing why
	// the submission is unacceptable for this type.
	ProcessResponse(cfg map[string]any, participantID string, data map[string]any) (map[string]any, error)

	// Results computes the type-specific aggregate from the full response
	// set. It is recomputed on every read; implementations must not retain
	// state between calls.
	Results(cfg map[string]any, responses []Response) map[string]any
}

// TransitionVetoer lets a type narrow the framework transition table.
// Optional; the framework table alone applies when not implemented.
type TransitionVetoer interface {
	CanTransition(from, to string) bool
}

// StateObserver receives lifecycle change notifications. Optional.
type StateObserver interface {
	OnStateChange(activityID, from, to string, metadata map[string]any)
}

// PersonaView shapes computed results for one persona. Types register views
// only for personas that need something other than the raw aggregate.
type PersonaView func(cfg map[string]any, results map[string]any) map[string]any

// Definition is a versioned activity type registration.
type Definition struct {
	ID          string
	Name        string
	Description string
	Version     string
	Schema      schema.Schema
	Handler     Handler
	Views       map[Persona]PersonaView
}

// Info is the client-facing slice of a definition.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Registry holds the registered activity types for the process lifetime.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]Definition
	logger *slog.Logger
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		defs:   make(map[string]Definition),
		logger: logger,
	}
}

// Register adds a definition. It fails with ErrDuplicateType when the id is
// already present; last-registration-wins is deliberately not supported.
func (r *Registry) Register(def Definition) error {
	if def.ID == "" || def.Handler == nil {
		return fmt.Errorf("%w: id and handler are required", ErrInvalidDefinition)
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	if def.Version == "" {
		def.Version = "1.0.0"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, def.ID)
	}
	r.defs[def.ID] = def

	r.logger.Info("registered activity type", "type", def.ID, "version", def.Version)
	return nil
}

// Resolve returns the definition for id.
func (r *Registry) Resolve(id string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	return def, nil
}

// Supports reports whether the type has a persona-specific view. A type may
// legitimately omit one and rely on the generic fallback.
func (r *Registry) Supports(id string, persona Persona) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	if !ok {
		return false
	}
	_, has := def.Views[persona]
	return has
}

// View returns the persona-specific view for (id, persona), or nil when the
// type relies on the generic fallback.
func (r *Registry) View(id string, persona Persona) PersonaView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	if !ok {
		return nil
	}
	return def.Views[persona]
}

// List returns client-facing info for all registered types, ordered by id.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, Info{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Version:     def.Version,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
