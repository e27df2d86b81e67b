package advisor

import (
	"fmt"
	"strings"

	"tripmind/backend/internal/graph"
)

const advisorSystemPrompt = `You are a helpful travel assistant. Use the user's stored preferences and their associated locations to give concrete, specific suggestions. Address the user's message directly.`

// formatContextual renders the contextual projection as
// "At Delhi: food (high), relaxation (moderate)" lines
func formatContextual(contextual []graph.LocationPreferences) string {
	lines := make([]string, 0, len(contextual))
	for _, entry := range contextual {
		prefs := make([]string, 0, len(entry.Preferences))
		for _, p := range entry.Preferences {
			prefs = append(prefs, fmt.Sprintf("%s (%s)", p.Type, p.Intensity))
		}
		lines = append(lines, fmt.Sprintf("At %s: %s", entry.Location, strings.Join(prefs, ", ")))
	}
	return strings.Join(lines, "\n")
}

func buildSuggestionPrompt(message string, contextual []graph.LocationPreferences) string {
	var b strings.Builder
	b.WriteString("The user said:\n")
	b.WriteString(fmt.Sprintf("%q\n\n", message))
	if len(contextual) > 0 {
		b.WriteString("Their preferences by location:\n")
		b.WriteString(formatContextual(contextual))
		b.WriteString("\n\n")
	}
	b.WriteString("Suggest something that addresses the message while considering these preferences and locations.")
	return b.String()
}
