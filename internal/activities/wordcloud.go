package activities

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/crowdkit/crowdkit/internal/schema"
)

// WordCloudHandler implements the word cloud type. Participants submit words
// or short phrases; the aggregate is a frequency-weighted cloud.
type WordCloudHandler struct{}

var (
	wordWhitespace = regexp.MustCompile(`\s+`)
	wordStrip      = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
)

func wordCloudSchema() schema.Schema {
	return schema.Schema{
		Fields: map[string]schema.Field{
			"prompt": {
				Kind:        schema.KindString,
				Required:    true,
				MinLen:      1,
				MaxLen:      300,
				Description: "The prompt or question to guide word submissions",
			},
			"max_word_length": {
				Kind:        schema.KindInt,
				Min:         schema.IntPtr(3),
				Max:         schema.IntPtr(50),
				Default:     20,
				Description: "Maximum length for individual words",
			},
			"max_words_per_submission": {
				Kind:        schema.KindInt,
				Min:         schema.IntPtr(1),
				Max:         schema.IntPtr(10),
				Default:     3,
				Description: "Maximum number of words per submission",
			},
			"allow_phrases": {
				Kind:        schema.KindBool,
				Default:     false,
				Description: "Whether to allow multi-word phrases",
			},
			"moderate_submissions": {
				Kind:        schema.KindBool,
				Default:     true,
				Description: "Whether submissions require moderation",
			},
			"case_sensitive": {
				Kind:        schema.KindBool,
				Default:     false,
				Description: "Whether word matching is case sensitive",
			},
			"show_live_results": {
				Kind:        schema.KindBool,
				Default:     true,
				Description: "Whether to show live word cloud updates",
			},
			"banned_words": {
				Kind:        schema.KindArray,
				Item:        &schema.Field{Kind: schema.KindString, MinLen: 1, MaxLen: 50},
				Description: "List of banned/filtered words",
			},
		},
	}
}

func (WordCloudHandler) DefaultMetadata() map[string]any {
	return map[string]any{
		"duration_seconds":         600,
		"max_responses":            100,
		"allow_multiple_responses": true,
		"show_live_results":        true,
		"activity_type":            "word_cloud",
		"requires_moderation":      true,
	}
}

func (WordCloudHandler) ProcessResponse(cfg map[string]any, participantID string, data map[string]any) (map[string]any, error) {
	words, ok := anyStrings(data["words"])
	if !ok {
		return nil, fmt.Errorf("response must contain 'words' as a list of strings")
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("at least one word must be submitted")
	}

	maxWords := cfgInt(cfg, "max_words_per_submission", 3)
	if len(words) > maxWords {
		return nil, fmt.Errorf("maximum %d words allowed per submission", maxWords)
	}

	processed := make([]string, 0, len(words))
	for _, word := range words {
		cleaned, err := cleanWord(cfg, word)
		if err != nil {
			return nil, err
		}
		processed = append(processed, cleaned)
	}

	status := "approved"
	if cfgBool(cfg, "moderate_submissions", true) {
		status = "pending"
	}

	return map[string]any{
		"type":   "word_submission",
		"words":  processed,
		"status": status,
	}, nil
}

// cleanWord normalizes one submission: trimmed, whitespace collapsed,
// punctuation stripped, lowercased unless the cloud is case sensitive.
func cleanWord(cfg map[string]any, word string) (string, error) {
	cleaned := strings.TrimSpace(word)
	if !cfgBool(cfg, "case_sensitive", false) {
		cleaned = strings.ToLower(cleaned)
	}
	cleaned = wordWhitespace.ReplaceAllString(cleaned, " ")
	cleaned = wordStrip.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", fmt.Errorf("word %q becomes empty after cleaning", word)
	}

	maxLength := cfgInt(cfg, "max_word_length", 20)
	if len(cleaned) > maxLength {
		return "", fmt.Errorf("word %q exceeds maximum length of %d characters", word, maxLength)
	}

	if !cfgBool(cfg, "allow_phrases", false) && strings.Contains(cleaned, " ") {
		return "", fmt.Errorf("phrases not allowed: %q", word)
	}

	for _, banned := range cfgStrings(cfg, "banned_words") {
		if strings.EqualFold(cleaned, banned) {
			return "", fmt.Errorf("word %q is not allowed", word)
		}
	}
	return cleaned, nil
}

func (WordCloudHandler) Results(cfg map[string]any, responses []registry.Response) map[string]any {
	frequencies := make(map[string]int)
	totalWords := 0
	participantCount := 0

	for _, resp := range responses {
		if resp.Data["type"] != "word_submission" {
			continue
		}
		status, _ := resp.Data["status"].(string)
		if status != "" && status != "approved" {
			continue
		}
		words, ok := anyStrings(resp.Data["words"])
		if !ok {
			continue
		}
		for _, word := range words {
			frequencies[word]++
			totalWords++
		}
		participantCount++
	}

	type entry struct {
		word  string
		count int
	}
	entries := make([]entry, 0, len(frequencies))
	for word, count := range frequencies {
		entries = append(entries, entry{word, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].word < entries[j].word
	})
	if len(entries) > 50 {
		entries = entries[:50]
	}

	maxFrequency := 1
	if len(entries) > 0 {
		maxFrequency = entries[0].count
	}

	cloud := make([]map[string]any, len(entries))
	for i, e := range entries {
		size := e.count * 100 / maxFrequency
		if size < 10 {
			size = 10
		}
		percentage := 0.0
		if totalWords > 0 {
			percentage = round1(float64(e.count) / float64(totalWords) * 100)
		}
		cloud[i] = map[string]any{
			"word":       e.word,
			"frequency":  e.count,
			"size":       size,
			"percentage": percentage,
		}
	}

	topCount := 10
	if len(cloud) < topCount {
		topCount = len(cloud)
	}

	return map[string]any{
		"type":                   "word_cloud_results",
		"prompt":                 cfgString(cfg, "prompt", ""),
		"word_cloud_data":        cloud,
		"word_frequencies":       frequencies,
		"most_common_words":      cloud[:topCount],
		"unique_word_count":      len(frequencies),
		"total_word_submissions": totalWords,
		"participant_count":      participantCount,
		"show_live_results":      cfgBool(cfg, "show_live_results", true),
		"allow_phrases":          cfgBool(cfg, "allow_phrases", false),
	}
}
