// internal/engine/fallback/postprocess.go
package fallback

import (
	"strings"

	"segment-insights/internal/engine/intent"
)

// intentEmoji prefixes an answer with a visual marker for its intent.
var intentEmoji = map[intent.Intent]string{
	intent.SegmentAnalysis:   "📊",
	intent.Comparison:        "⚖️",
	intent.ChurnAnalysis:     "⚠️",
	intent.MarketingStrategy: "🎯",
	intent.CustomerBehavior:  "👥",
	intent.BusinessMetrics:   "💰",
}

// PostProcess applies the final formatting rules to an answer: the
// intent marker goes in front unless already present, and the text
// ends in terminal punctuation.
func PostProcess(response string, it intent.Intent) string {
	if emoji, ok := intentEmoji[it]; ok && !strings.HasPrefix(response, emoji) {
		response = emoji + " " + response
	}

	if !strings.HasSuffix(response, ".") &&
		!strings.HasSuffix(response, "!") &&
		!strings.HasSuffix(response, "?") {
		response += "."
	}
	return response
}
