package registry_test

import (
	"testing"

	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/crowdkit/crowdkit/internal/schema"
	"github.com/stretchr/testify/require"
)

type stubHandler struct{}

func (stubHandler) DefaultMetadata() map[string]any { return map[string]any{} }

func (stubHandler) ProcessResponse(cfg map[string]any, participantID string, data map[string]any) (map[string]any, error) {
	return data, nil
}

func (stubHandler) Results(cfg map[string]any, responses []registry.Response) map[string]any {
	return map[string]any{"total_responses": len(responses)}
}

func stubDefinition(id string) registry.Definition {
	return registry.Definition{
		ID:      id,
		Name:    "Stub",
		Version: "1.0.0",
		Schema:  schema.Schema{},
		Handler: stubHandler{},
	}
}

func TestRegistry_RegisterResolve(t *testing.T) {
	reg := registry.New(nil)
	require.NoError(t, reg.Register(stubDefinition("poll")))

	def, err := reg.Resolve("poll")
	require.NoError(t, err)
	require.Equal(t, "poll", def.ID)

	_, err = reg.Resolve("quiz")
	require.ErrorIs(t, err, registry.ErrUnknownType)
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	reg := registry.New(nil)
	require.NoError(t, reg.Register(stubDefinition("poll")))
	require.ErrorIs(t, reg.Register(stubDefinition("poll")), registry.ErrDuplicateType)
}

func TestRegistry_InvalidDefinition(t *testing.T) {
	reg := registry.New(nil)
	require.ErrorIs(t, reg.Register(registry.Definition{}), registry.ErrInvalidDefinition)
	require.ErrorIs(t, reg.Register(registry.Definition{ID: "poll"}), registry.ErrInvalidDefinition)
}

func TestRegistry_PersonaCapabilities(t *testing.T) {
	reg := registry.New(nil)
	def := stubDefinition("qna")
	def.Views = map[registry.Persona]registry.PersonaView{
		registry.PersonaViewer: func(cfg, results map[string]any) map[string]any {
			return map[string]any{"shaped": true}
		},
	}
	require.NoError(t, reg.Register(def))

	require.True(t, reg.Supports("qna", registry.PersonaViewer))
	require.False(t, reg.Supports("qna", registry.PersonaAdmin))
	require.False(t, reg.Supports("missing", registry.PersonaViewer))

	view := reg.View("qna", registry.PersonaViewer)
	require.NotNil(t, view)
	require.Equal(t, map[string]any{"shaped": true}, view(nil, nil))
	require.Nil(t, reg.View("qna", registry.PersonaParticipant))
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := registry.New(nil)
	require.NoError(t, reg.Register(stubDefinition("word_cloud")))
	require.NoError(t, reg.Register(stubDefinition("poll")))
	require.NoError(t, reg.Register(stubDefinition("qna")))

	infos := reg.List()
	require.Len(t, infos, 3)
	require.Equal(t, "poll", infos[0].ID)
	require.Equal(t, "qna", infos[1].ID)
	require.Equal(t, "word_cloud", infos[2].ID)
}
