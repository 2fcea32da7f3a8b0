package activities

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/crowdkit/crowdkit/internal/schema"
	"github.com/google/uuid"
)

// QnaHandler implements the Q&A type. A submission is either a question or a
// vote on an existing question; the aggregate ranks questions by votes.
type QnaHandler struct{}

func qnaSchema() schema.Schema {
	return schema.Schema{
		Fields: map[string]schema.Field{
			"topic": {
				Kind:        schema.KindString,
				Required:    true,
				MinLen:      1,
				MaxLen:      200,
				Description: "The topic or theme for the Q&A session",
			},
			"allow_anonymous": {
				Kind:        schema.KindBool,
				Default:     true,
				Description: "Whether participants can submit questions anonymously",
			},
			"enable_voting": {
				Kind:        schema.KindBool,
				Default:     true,
				Description: "Whether participants can vote on questions",
			},
			"moderate_questions": {
				Kind:        schema.KindBool,
				Default:     false,
				Description: "Whether questions require moderation before being visible",
			},
			"max_question_length": {
				Kind:        schema.KindInt,
				Min:         schema.IntPtr(10),
				Max:         schema.IntPtr(1000),
				Default:     500,
				Description: "Maximum length for submitted questions",
			},
			"allow_multiple_votes": {
				Kind:        schema.KindBool,
				Default:     false,
				Description: "Whether one participant may cast several votes on a question",
			},
			"show_vote_counts": {
				Kind:        schema.KindBool,
				Default:     true,
				Description: "Whether to display vote counts to participants",
			},
		},
	}
}

func (QnaHandler) DefaultMetadata() map[string]any {
	return map[string]any{
		"duration_seconds":         900,
		"max_responses":            nil,
		"allow_multiple_responses": true,
		"show_live_results":        true,
		"activity_type":            "qna",
		"requires_moderation":      true,
	}
}

func (QnaHandler) ProcessResponse(cfg map[string]any, participantID string, data map[string]any) (map[string]any, error) {
	switch data["type"] {
	case "question":
		return processQuestion(cfg, participantID, data)
	case "vote":
		return processVote(cfg, participantID, data)
	default:
		return nil, fmt.Errorf("invalid response type %v, must be 'question' or 'vote'", data["type"])
	}
}

func processQuestion(cfg map[string]any, participantID string, data map[string]any) (map[string]any, error) {
	text, _ := data["question_text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("question text cannot be empty")
	}

	maxLength := cfgInt(cfg, "max_question_length", 500)
	if len(text) > maxLength {
		return nil, fmt.Errorf("question exceeds maximum length of %d characters", maxLength)
	}

	allowAnonymous := cfgBool(cfg, "allow_anonymous", true)
	anonymous := allowAnonymous
	if v, ok := data["anonymous"].(bool); ok {
		anonymous = v
	}
	if anonymous && !allowAnonymous {
		return nil, fmt.Errorf("anonymous question submissions are not allowed")
	}

	status := "approved"
	if cfgBool(cfg, "moderate_questions", false) {
		status = "pending"
	}

	return map[string]any{
		"type":           "question",
		"question_id":    uuid.NewString(),
		"participant_id": participantID,
		"question_text":  text,
		"anonymous":      anonymous,
		"status":         status,
	}, nil
}

func processVote(cfg map[string]any, participantID string, data map[string]any) (map[string]any, error) {
	questionID, _ := data["question_id"].(string)
	if questionID == "" {
		return nil, fmt.Errorf("vote must specify question_id")
	}
	if !cfgBool(cfg, "enable_voting", true) {
		return nil, fmt.Errorf("voting is not enabled for this session")
	}
	return map[string]any{
		"type":           "vote",
		"participant_id": participantID,
		"question_id":    questionID,
	}, nil
}

func (QnaHandler) Results(cfg map[string]any, responses []registry.Response) map[string]any {
	type question struct {
		id        string
		text      string
		anonymous bool
		author    string
		status    string
		voters    []string
	}

	questions := make(map[string]*question)
	order := make([]string, 0)
	votes := make(map[string][]string)

	for _, resp := range responses {
		switch resp.Data["type"] {
		case "question":
			id, _ := resp.Data["question_id"].(string)
			if id == "" {
				continue
			}
			text, _ := resp.Data["question_text"].(string)
			anonymous, _ := resp.Data["anonymous"].(bool)
			status, _ := resp.Data["status"].(string)
			if status == "" {
				status = "approved"
			}
			questions[id] = &question{
				id:        id,
				text:      text,
				anonymous: anonymous,
				author:    resp.ParticipantID,
				status:    status,
			}
			order = append(order, id)
		case "vote":
			id, _ := resp.Data["question_id"].(string)
			if id == "" {
				continue
			}
			votes[id] = append(votes[id], resp.ParticipantID)
		}
	}

	multipleVotes := cfgBool(cfg, "allow_multiple_votes", false)
	totalVotes := 0
	for id, voters := range votes {
		q, ok := questions[id]
		if !ok {
			continue
		}
		if multipleVotes {
			q.voters = voters
		} else {
			seen := make(map[string]bool, len(voters))
			for _, voter := range voters {
				if !seen[voter] {
					seen[voter] = true
					q.voters = append(q.voters, voter)
				}
			}
		}
		totalVotes += len(voters)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return len(questions[order[i]].voters) > len(questions[order[j]].voters)
	})

	toMap := func(q *question) map[string]any {
		m := map[string]any{
			"id":         q.id,
			"text":       q.text,
			"anonymous":  q.anonymous,
			"status":     q.status,
			"vote_count": len(q.voters),
			"voters":     q.voters,
		}
		if !q.anonymous {
			m["participant_id"] = q.author
		}
		return m
	}

	approved := make([]map[string]any, 0, len(order))
	pending := make([]map[string]any, 0)
	for _, id := range order {
		q := questions[id]
		switch q.status {
		case "approved":
			approved = append(approved, toMap(q))
		case "pending":
			pending = append(pending, toMap(q))
		}
	}

	var mostPopular map[string]any
	if len(approved) > 0 {
		mostPopular = approved[0]
	}

	return map[string]any{
		"type":                  "qna_results",
		"topic":                 cfgString(cfg, "topic", ""),
		"total_questions":       len(questions),
		"total_votes":           totalVotes,
		"approved_questions":    approved,
		"pending_questions":     pending,
		"most_popular_question": mostPopular,
		"enable_voting":         cfgBool(cfg, "enable_voting", true),
		"show_vote_counts":      cfgBool(cfg, "show_vote_counts", true),
		"allow_anonymous":       cfgBool(cfg, "allow_anonymous", true),
	}
}

// qnaParticipantView strips pending questions and, when vote counts are
// hidden, the per-question tallies.
func qnaParticipantView(cfg map[string]any, results map[string]any) map[string]any {
	out := make(map[string]any, len(results))
	for k, v := range results {
		out[k] = v
	}
	out["pending_questions"] = []map[string]any{}

	if !cfgBool(cfg, "show_vote_counts", true) {
		if approved, ok := out["approved_questions"].([]map[string]any); ok {
			stripped := make([]map[string]any, len(approved))
			for i, q := range approved {
				s := make(map[string]any, len(q))
				for k, v := range q {
					if k == "vote_count" || k == "voters" {
						continue
					}
					s[k] = v
				}
				stripped[i] = s
			}
			out["approved_questions"] = stripped
		}
		delete(out, "total_votes")
	}
	return out
}
