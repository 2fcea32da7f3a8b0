package activities

import (
	"fmt"
	"time"

	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/crowdkit/crowdkit/internal/schema"
)

// PollHandler implements the multiple choice poll type. Participants pick one
// or more options; the aggregate is a tally with percentages.
type PollHandler struct{}

func pollSchema() schema.Schema {
	return schema.Schema{
		Fields: map[string]schema.Field{
			"question": {
				Kind:        schema.KindString,
				Required:    true,
				MinLen:      1,
				MaxLen:      500,
				Description: "The poll question to display to participants",
			},
			"options": {
				Kind:        schema.KindArray,
				Required:    true,
				MinItems:    2,
				MaxItems:    10,
				Item:        &schema.Field{Kind: schema.KindString, MinLen: 1, MaxLen: 200},
				Description: "List of answer options for participants to choose from",
			},
			"allow_multiple_choice": {
				Kind:        schema.KindBool,
				Default:     false,
				Description: "Whether participants can select multiple options",
			},
			"show_live_results": {
				Kind:        schema.KindBool,
				Default:     true,
				Description: "Whether to show live results to viewers",
			},
			"anonymous_voting": {
				Kind:        schema.KindBool,
				Default:     true,
				Description: "Whether voting is anonymous",
			},
		},
		Rules: []schema.Rule{uniquePollOptions},
	}
}

// uniquePollOptions rejects configurations with duplicate option labels,
// which would make tallies ambiguous.
func uniquePollOptions(cfg map[string]any) []schema.Issue {
	options, ok := anyStrings(cfg["options"])
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if seen[opt] {
			return []schema.Issue{{
				Code:    schema.CodeInvalidValue,
				Field:   "options",
				Message: fmt.Sprintf("duplicate option %q", opt),
			}}
		}
		seen[opt] = true
	}
	return nil
}

func (PollHandler) DefaultMetadata() map[string]any {
	return map[string]any{
		"duration_seconds":         300,
		"max_responses":            nil,
		"allow_multiple_responses": false,
		"show_live_results":        true,
		"activity_type":            "poll",
		"requires_moderation":      false,
	}
}

func (PollHandler) ProcessResponse(cfg map[string]any, participantID string, data map[string]any) (map[string]any, error) {
	selected, ok := anyStrings(data["selected_options"])
	if !ok {
		return nil, fmt.Errorf("response must contain 'selected_options' as a list of strings")
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("at least one option must be selected")
	}

	valid := cfgStrings(cfg, "options")
	if len(valid) == 0 {
		return nil, fmt.Errorf("activity configuration has no valid options")
	}
	validSet := make(map[string]bool, len(valid))
	for _, opt := range valid {
		validSet[opt] = true
	}
	for _, opt := range selected {
		if !validSet[opt] {
			return nil, fmt.Errorf("invalid option selected: %q", opt)
		}
	}

	if !cfgBool(cfg, "allow_multiple_choice", false) && len(selected) > 1 {
		return nil, fmt.Errorf("multiple choices not allowed for this poll")
	}

	anonymous := cfgBool(cfg, "anonymous_voting", true)
	processed := map[string]any{
		"type":             "poll_response",
		"selected_options": selected,
		"anonymous":        anonymous,
	}
	if !anonymous {
		processed["participant_id"] = participantID
	}
	return processed, nil
}

func (PollHandler) Results(cfg map[string]any, responses []registry.Response) map[string]any {
	options := cfgStrings(cfg, "options")
	counts := make(map[string]int, len(options))
	for _, opt := range options {
		counts[opt] = 0
	}

	total := 0
	var lastVoteAt *time.Time
	for _, resp := range responses {
		selected, ok := anyStrings(resp.Data["selected_options"])
		if !ok {
			continue
		}
		for _, opt := range selected {
			if _, known := counts[opt]; known {
				counts[opt]++
			}
		}
		total++
		at := resp.CreatedAt
		if lastVoteAt == nil || at.After(*lastVoteAt) {
			lastVoteAt = &at
		}
	}

	percentages := make(map[string]float64, len(options))
	for opt, count := range counts {
		if total > 0 {
			percentages[opt] = round1(float64(count) / float64(total) * 100)
		} else {
			percentages[opt] = 0
		}
	}

	maxVotes := 0
	for _, count := range counts {
		if count > maxVotes {
			maxVotes = count
		}
	}
	mostPopular := make([]string, 0, 1)
	for _, opt := range options {
		if counts[opt] == maxVotes && maxVotes > 0 {
			mostPopular = append(mostPopular, opt)
		}
	}

	results := map[string]any{
		"type":                  "poll_results",
		"question":              cfgString(cfg, "question", ""),
		"options":               options,
		"vote_counts":           counts,
		"percentages":           percentages,
		"total_responses":       total,
		"most_popular":          mostPopular,
		"allow_multiple_choice": cfgBool(cfg, "allow_multiple_choice", false),
		"show_live_results":     cfgBool(cfg, "show_live_results", true),
	}
	if lastVoteAt != nil {
		results["last_vote_at"] = lastVoteAt.UTC().Format(time.RFC3339)
	}
	return results
}

// pollParticipantView hides the running tally from voters when the poll keeps
// live results private.
func pollParticipantView(cfg map[string]any, results map[string]any) map[string]any {
	if cfgBool(cfg, "show_live_results", true) {
		return results
	}
	return map[string]any{
		"type":            "poll_results",
		"question":        results["question"],
		"options":         results["options"],
		"total_responses": results["total_responses"],
	}
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
