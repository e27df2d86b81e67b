package extract

import (
	"encoding/json"
	"strings"
	"sync/atomic"

	"tripmind/backend/internal/graph"
	apperrors "tripmind/backend/pkg/errors"
	"tripmind/backend/pkg/logger"
	"go.uber.org/zap"
)

// DefaultBudget is the budget substituted when model output is unusable
const DefaultBudget = "average"

// Extraction is the structured result recovered from raw model output
type Extraction struct {
	Preferences []graph.PreferenceUpdate `json:"preferences"`
	Budget      string                   `json:"budget"`
	Location    *string                  `json:"location"`
}

// DefaultExtraction is the safe value used when model output cannot be
// recovered: no preferences, average budget, no location
func DefaultExtraction() Extraction {
	return Extraction{
		Preferences: []graph.PreferenceUpdate{},
		Budget:      DefaultBudget,
	}
}

// CompleteJSON repairs output truncated at trailing closing braces by
// appending the deficit of '}' characters. Balanced or over-closed input is
// returned unchanged. Interior corruption is not fixable here.
func CompleteJSON(raw string) string {
	opens := strings.Count(raw, "{")
	closes := strings.Count(raw, "}")
	if opens > closes {
		raw += strings.Repeat("}", opens-closes)
	}
	return raw
}

// Sanitizer recovers a structured extraction from untrusted model text,
// substituting a safe default when parsing fails even after brace
// completion. Substitutions are counted so degraded responses stay
// observable.
type Sanitizer struct {
	fallbacks atomic.Int64
	logger    *zap.Logger
}

// NewSanitizer creates a new response sanitizer
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		logger: logger.Get(),
	}
}

// Sanitize parses raw model output into an Extraction. Well-formed input
// parses as-is; input truncated only at trailing close-braces is recovered;
// anything else yields DefaultExtraction. Sanitize never fails.
func (s *Sanitizer) Sanitize(raw string) Extraction {
	var extraction Extraction
	if err := json.Unmarshal([]byte(CompleteJSON(raw)), &extraction); err != nil {
		s.fallbacks.Add(1)
		s.logger.Warn("Model output unusable, substituting defaults",
			zap.Error(apperrors.NewModelOutputMalformed(err)),
			zap.Int("raw_length", len(raw)),
		)
		return DefaultExtraction()
	}

	if extraction.Preferences == nil {
		extraction.Preferences = []graph.PreferenceUpdate{}
	}
	return extraction
}

// FallbackCount returns how many times Sanitize has substituted the default
func (s *Sanitizer) FallbackCount() int64 {
	return s.fallbacks.Load()
}
