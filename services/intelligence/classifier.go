package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hotelbot/models"

	"go.uber.org/zap"
)

// minConfidence is the threshold below which an LLM label is treated as unknown.
const minConfidence = 0.3

// KeywordClassifier maps a message to an intent by keyword matching. It is the
// fallback when no language model is configured.
type KeywordClassifier struct{}

var intentKeywords = []struct {
	intent   models.Intent
	keywords []string
}{
	{models.IntentCancellation, []string{"cancel", "cancellation", "call off"}},
	{models.IntentRescheduling, []string{"reschedule", "change my booking", "change the date", "change my dates", "move my booking", "modify", "postpone"}},
	{models.IntentBooking, []string{"book", "reserve", "reservation", "room for", "need a room", "want a room", "stay"}},
	{models.IntentInquiry, []string{"?", "what", "when", "where", "how", "do you", "is there", "are there", "price", "amenit", "pool", "parking", "wifi", "wi-fi", "breakfast", "pet", "check-in", "check in", "checkout", "check-out"}},
}

func (KeywordClassifier) ClassifyIntent(_ context.Context, text string) (models.Intent, error) {
	lowerText := strings.ToLower(text)
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lowerText, kw) {
				return group.intent, nil
			}
		}
	}
	return models.IntentUnknown, nil
}

// LLMIntentClassifier asks the language model for a fixed-enum label.
type LLMIntentClassifier struct {
	gen      TextGenerator
	fallback KeywordClassifier
	logger   *zap.Logger
}

func NewLLMIntentClassifier(gen TextGenerator, logger *zap.Logger) *LLMIntentClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMIntentClassifier{gen: gen, logger: logger}
}

type intentReply struct {
	Intent     string   `json:"intent"`
	Confidence *float64 `json:"confidence"`
}

func (c *LLMIntentClassifier) ClassifyIntent(ctx context.Context, text string) (models.Intent, error) {
	prompt := buildIntentPrompt(text)

	var raw string
	var err error
	if jg, ok := c.gen.(JSONGenerator); ok {
		raw, err = jg.GenerateJSON(ctx, prompt)
	} else {
		raw, err = c.gen.GenerateContent(ctx, prompt)
	}
	if err != nil {
		return "", fmt.Errorf("%w: classify intent: %v", ErrUnavailable, err)
	}

	reply, perr := parseIntentReply(raw)
	if perr != nil {
		c.logger.Warn("Unparseable intent reply, falling back to keywords",
			zap.String("raw", raw), zap.Error(perr))
		return c.fallback.ClassifyIntent(ctx, text)
	}

	intent := models.ParseIntent(reply.Intent)
	if reply.Confidence != nil && *reply.Confidence < minConfidence {
		c.logger.Debug("Low-confidence intent", zap.String("intent", string(intent)), zap.Float64("confidence", *reply.Confidence))
		return models.IntentUnknown, nil
	}
	return intent, nil
}

// parseIntentReply extracts the JSON object from a model reply, tolerating code fences.
func parseIntentReply(raw string) (intentReply, error) {
	var reply intentReply
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return reply, fmt.Errorf("no JSON object in %q", raw)
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
		return reply, err
	}
	if reply.Intent == "" {
		return reply, fmt.Errorf("missing intent in %q", raw)
	}
	return reply, nil
}
