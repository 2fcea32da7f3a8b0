package activities

import (
	"fmt"

	"github.com/crowdkit/crowdkit/internal/registry"
)

// RegisterBuiltins adds the built-in activity types to the registry. Called
// once at process start, before any store or transport is wired.
func RegisterBuiltins(reg *registry.Registry) error {
	defs := []registry.Definition{
		{
			ID:          "poll",
			Name:        "Poll",
			Description: "Multiple choice poll with live vote tallies",
			Version:     "1.0.0",
			Schema:      pollSchema(),
			Handler:     PollHandler{},
			Views: map[registry.Persona]registry.PersonaView{
				registry.PersonaParticipant: pollParticipantView,
			},
		},
		{
			ID:          "qna",
			Name:        "Q&A",
			Description: "Question collection with voting and moderation",
			Version:     "1.0.0",
			Schema:      qnaSchema(),
			Handler:     QnaHandler{},
			Views: map[registry.Persona]registry.PersonaView{
				registry.PersonaParticipant: qnaParticipantView,
				registry.PersonaViewer:      qnaParticipantView,
			},
		},
		{
			ID:          "word_cloud",
			Name:        "Word Cloud",
			Description: "Frequency-weighted cloud of submitted words",
			Version:     "1.0.0",
			Schema:      wordCloudSchema(),
			Handler:     WordCloudHandler{},
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("registering %s: %w", def.ID, err)
		}
	}
	return nil
}
