// Package classifier tags each interaction with a category and importance
// score. The primary path asks an LLM for a structured judgement; any model
// failure falls back to deterministic keyword rules so classification never
// blocks fragment creation.
package classifier

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
)

// DefaultImportance is assigned when no model signal is available. The 1-5
// scale and this baseline are tunable policy, not a contract.
const DefaultImportance = 3

// Classifier assigns a category and importance to interactions
type Classifier struct {
	llm               gollem.LLMClient
	defaultImportance int
}

// Option customizes the classifier
type Option func(*Classifier)

// WithDefaultImportance overrides the fallback importance score
func WithDefaultImportance(importance int) Option {
	return func(c *Classifier) {
		if importance >= 1 && importance <= 5 {
			c.defaultImportance = importance
		}
	}
}

// New creates a classifier. The LLM client may be nil, in which case only
// the keyword fallback is used.
func New(llm gollem.LLMClient, opts ...Option) *Classifier {
	c := &Classifier{
		llm:               llm,
		defaultImportance: DefaultImportance,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns exactly one category and an importance in [1, 5]. It
// never returns an error: the keyword fallback always produces a result.
func (c *Classifier) Classify(ctx context.Context, message, response string) (types.Category, int) {
	if c.llm != nil {
		category, importance, err := c.classifyWithModel(ctx, message, response)
		if err == nil {
			return category, importance
		}
		logging.From(ctx).Warn("model classification failed, using keyword fallback",
			"error", err.Error())
	}

	return c.classifyWithKeywords(message, response), c.defaultImportance
}

type modelResult struct {
	Category   string `json:"category"`
	Importance int    `json:"importance"`
}

func (c *Classifier) classifyWithModel(ctx context.Context, message, response string) (types.Category, int, error) {
	session, err := c.llm.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(responseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to create classification session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildPrompt(message, response)))
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to generate classification")
	}
	if len(resp.Texts) == 0 {
		return "", 0, goerr.New("empty classification response")
	}

	return c.parseModelResult([]byte(resp.Texts[0]))
}

// parseModelResult validates the model output against the closed category
// enum and clamps importance into [1, 5]
func (c *Classifier) parseModelResult(raw []byte) (types.Category, int, error) {
	var result modelResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", 0, goerr.Wrap(err, "failed to parse classification response",
			goerr.V("response", string(raw)))
	}

	category, err := types.ParseCategory(strings.ToLower(strings.TrimSpace(result.Category)))
	if err != nil {
		return "", 0, err
	}

	importance := result.Importance
	if importance == 0 {
		importance = c.defaultImportance
	}
	if importance < 1 {
		importance = 1
	}
	if importance > 5 {
		importance = 5
	}

	return category, importance, nil
}

const systemPrompt = `You classify one exchange between a user and their AI companion.
Pick exactly one category:
- health: symptoms, medication, appointments with doctors, physical or medical wellbeing
- emotion: feelings, mood, loneliness, grief, joy
- event: happenings in the user's life such as visits, trips, birthdays
- preference: likes, dislikes, habits, favorites
- interaction: everything else, ordinary small talk

Rate importance from 1 (trivial) to 5 (critical to remember).`

func buildPrompt(message, response string) string {
	var sb strings.Builder
	sb.WriteString("User: ")
	sb.WriteString(message)
	sb.WriteString("\nAI: ")
	sb.WriteString(response)
	return sb.String()
}

func responseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "InteractionClassification",
		Description: "Category and importance of one conversational exchange",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"category": {
				Type:        gollem.TypeString,
				Description: "One of: health, emotion, event, preference, interaction",
				Required:    true,
			},
			"importance": {
				Type:        gollem.TypeInteger,
				Description: "Importance from 1 (trivial) to 5 (critical)",
				Required:    true,
			},
		},
	}
}
