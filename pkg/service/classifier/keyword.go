package classifier

import (
	"strings"

	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

// Keyword rules are evaluated in priority order: health findings outrank
// emotional ones, which outrank events and preferences. The first matching
// rule wins, and interaction is the catch-all.
var keywordRules = []struct {
	category types.Category
	terms    []string
}{
	{
		category: types.CategoryHealth,
		terms: []string{
			"pain", "ache", "hurt", "dizzy", "tired", "sick", "nausea",
			"medication", "medicine", "pill", "dose", "prescription",
			"doctor", "nurse", "hospital", "clinic", "symptom",
			"blood pressure", "diabetes", "arthritis", "sleep",
		},
	},
	{
		category: types.CategoryEmotion,
		terms: []string{
			"feel", "feeling", "sad", "happy", "lonely", "worried",
			"anxious", "scared", "afraid", "miss", "cry", "upset",
			"glad", "grateful", "frustrated", "angry",
		},
	},
	{
		category: types.CategoryEvent,
		terms: []string{
			"appointment", "visit", "visited", "birthday", "anniversary",
			"trip", "church", "party", "funeral", "wedding",
			"came over", "went to", "tomorrow", "next week",
		},
	},
	{
		category: types.CategoryPreference,
		terms: []string{
			"favorite", "favourite", "prefer", "like to", "love to",
			"enjoy", "hate", "can't stand", "always have", "never eat",
		},
	},
}

func (c *Classifier) classifyWithKeywords(message, response string) types.Category {
	text := strings.ToLower(message + " " + response)

	for _, rule := range keywordRules {
		for _, term := range rule.terms {
			if strings.Contains(text, term) {
				return rule.category
			}
		}
	}
	return types.CategoryInteraction
}
