package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"tripmind/backend/internal/graph"
	"tripmind/backend/pkg/logger"
	"go.uber.org/zap"
)

// CompletionClient is the slice of the LLM adapter the extractor needs
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userMsg string) (string, error)
}

const extractionSystemPrompt = `You extract travel preferences from user messages.
Respond with a single JSON object and nothing else, in this exact shape:
{"location": <city name mentioned in the message, or null>, "budget": <"low", "average", "comfortable" or "high" if stated, otherwise omit>, "preferences": [{"type": <preference category such as "food", "historical", "relaxation", "activity">, "intensity": <"low", "moderate" or "high", or null if not stated>}]}
Only include preferences the message actually expresses. Do not invent a location.`

// Extractor turns a free-text message into a structured preference delta,
// using the user's current profile as context for the model
type Extractor struct {
	llm       CompletionClient
	sanitizer *Sanitizer
	logger    *zap.Logger
}

// NewExtractor creates a new preference extractor
func NewExtractor(llm CompletionClient) *Extractor {
	return &Extractor{
		llm:       llm,
		sanitizer: NewSanitizer(),
		logger:    logger.Get(),
	}
}

// Extract asks the model for a structured delta and sanitizes its raw
// output. A model transport failure propagates; malformed output does not,
// it degrades to the default extraction.
func (e *Extractor) Extract(ctx context.Context, message string, current *graph.UserSnapshot) (Extraction, error) {
	userMsg := message
	if current != nil {
		if profile, err := json.Marshal(current); err == nil {
			userMsg = fmt.Sprintf("Known profile: %s\n\nMessage: %s", profile, message)
		}
	}

	raw, err := e.llm.Complete(ctx, extractionSystemPrompt, userMsg)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to extract preferences: %w", err)
	}

	extraction := e.sanitizer.Sanitize(raw)
	e.logger.Debug("Preferences extracted",
		zap.Int("preferences", len(extraction.Preferences)),
		zap.Bool("has_location", extraction.Location != nil),
	)
	return extraction, nil
}

// FallbackCount reports how often raw model output had to be replaced with
// the default extraction
func (e *Extractor) FallbackCount() int64 {
	return e.sanitizer.FallbackCount()
}
