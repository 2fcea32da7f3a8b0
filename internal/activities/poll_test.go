package activities

import (
	"testing"
	"time"

	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/stretchr/testify/require"
)

func pollConfig(overrides map[string]any) map[string]any {
	cfg := map[string]any{
		"question": "Favorite color?",
		"options":  []any{"red", "green", "blue"},
	}
	for k, v := range overrides {
		cfg[k] = v
	}
	return cfg
}

func TestPollSchema(t *testing.T) {
	s := pollSchema()

	require.True(t, s.Validate(pollConfig(nil)).Valid)

	res := s.Validate(map[string]any{"options": []any{"a", "b"}})
	require.False(t, res.Valid, "question is required")

	res = s.Validate(pollConfig(map[string]any{"options": []any{"only one"}}))
	require.False(t, res.Valid, "polls need at least two options")

	res = s.Validate(pollConfig(map[string]any{"options": []any{"a", "a"}}))
	require.False(t, res.Valid, "duplicate options are ambiguous")
}

func TestPollProcessResponse(t *testing.T) {
	h := PollHandler{}
	cfg := pollConfig(nil)

	processed, err := h.ProcessResponse(cfg, "p1", map[string]any{
		"selected_options": []any{"red"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"red"}, processed["selected_options"])
	require.Equal(t, true, processed["anonymous"])
	require.NotContains(t, processed, "participant_id", "anonymous votes carry no voter id")
}

func TestPollProcessResponse_Rejections(t *testing.T) {
	h := PollHandler{}
	cfg := pollConfig(nil)

	_, err := h.ProcessResponse(cfg, "p1", map[string]any{})
	require.Error(t, err)

	_, err = h.ProcessResponse(cfg, "p1", map[string]any{"selected_options": []any{}})
	require.Error(t, err)

	_, err = h.ProcessResponse(cfg, "p1", map[string]any{"selected_options": []any{"purple"}})
	require.ErrorContains(t, err, "invalid option")

	_, err = h.ProcessResponse(cfg, "p1", map[string]any{"selected_options": []any{"red", "blue"}})
	require.ErrorContains(t, err, "multiple choices not allowed")
}

func TestPollProcessResponse_MultipleChoiceAndNamedVoting(t *testing.T) {
	h := PollHandler{}
	cfg := pollConfig(map[string]any{
		"allow_multiple_choice": true,
		"anonymous_voting":      false,
	})

	processed, err := h.ProcessResponse(cfg, "p1", map[string]any{
		"selected_options": []any{"red", "blue"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"red", "blue"}, processed["selected_options"])
	require.Equal(t, "p1", processed["participant_id"])
}

func TestPollResults(t *testing.T) {
	h := PollHandler{}
	cfg := pollConfig(nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	responses := []registry.Response{
		{ParticipantID: "p1", Data: map[string]any{"selected_options": []any{"red"}}, CreatedAt: base},
		{ParticipantID: "p2", Data: map[string]any{"selected_options": []any{"red"}}, CreatedAt: base.Add(time.Minute)},
		{ParticipantID: "p3", Data: map[string]any{"selected_options": []any{"blue"}}, CreatedAt: base.Add(2 * time.Minute)},
		{ParticipantID: "p4", Data: map[string]any{"selected_options": []any{"ignored option"}}, CreatedAt: base.Add(3 * time.Minute)},
	}

	results := h.Results(cfg, responses)
	require.Equal(t, 4, results["total_responses"])
	require.Equal(t, map[string]int{"red": 2, "green": 0, "blue": 1}, results["vote_counts"])
	require.Equal(t, []string{"red"}, results["most_popular"])
	require.Equal(t, base.Add(3*time.Minute).Format(time.RFC3339), results["last_vote_at"])

	percentages := results["percentages"].(map[string]float64)
	require.Equal(t, 50.0, percentages["red"])
	require.Equal(t, 25.0, percentages["blue"])
}

func TestPollResults_Empty(t *testing.T) {
	h := PollHandler{}
	results := h.Results(pollConfig(nil), nil)
	require.Equal(t, 0, results["total_responses"])
	require.Empty(t, results["most_popular"])
	require.NotContains(t, results, "last_vote_at")
}

func TestPollResults_MostPopularTies(t *testing.T) {
	h := PollHandler{}
	responses := []registry.Response{
		{Data: map[string]any{"selected_options": []any{"red"}}},
		{Data: map[string]any{"selected_options": []any{"blue"}}},
	}
	results := h.Results(pollConfig(nil), responses)
	require.Equal(t, []string{"red", "blue"}, results["most_popular"], "ties keep the configured option order")
}

func TestPollParticipantView(t *testing.T) {
	h := PollHandler{}
	cfg := pollConfig(map[string]any{"show_live_results": false})
	responses := []registry.Response{
		{Data: map[string]any{"selected_options": []any{"red"}}},
	}

	view := pollParticipantView(cfg, h.Results(cfg, responses))
	require.Equal(t, 1, view["total_responses"])
	require.NotContains(t, view, "vote_counts", "tally stays hidden until results go live")
	require.NotContains(t, view, "percentages")

	open := pollConfig(nil)
	view = pollParticipantView(open, h.Results(open, responses))
	require.Contains(t, view, "vote_counts")
}
