// internal/engine/llm/prompt.go
package llm

import (
	"fmt"
	"strings"

	"segment-insights/internal/engine/memory"
)

// historyWindow is how many trailing messages enter the prompt.
const historyWindow = 4

// BuildPrompt assembles the instruction-format prompt: role header,
// grounding data, recent conversation, the current question, and the
// required answer structure.
func BuildPrompt(query, contextData string, history []memory.Turn) string {
	var conversation strings.Builder
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, turn := range history[start:] {
		switch turn.Role {
		case memory.RoleUser:
			fmt.Fprintf(&conversation, "Human: %s\n", turn.Content)
		case memory.RoleAssistant:
			fmt.Fprintf(&conversation, "Assistant: %s\n", turn.Content)
		}
	}

	return fmt.Sprintf(`[INST] You are an expert business analyst specializing in customer segmentation and marketing strategy. You have access to real customer data and must provide data-driven insights.

CUSTOMER SEGMENTATION DATA:
%s

CONVERSATION HISTORY:
%s

CURRENT QUESTION: %s

INSTRUCTIONS:
1. Analyze the provided customer data thoroughly
2. Provide specific, data-backed insights (use actual numbers from the data)
3. Explain business reasoning behind patterns
4. Give actionable marketing recommendations
5. Use professional business language
6. Structure your response clearly with headers
7. Do NOT make up data - only use the provided information

RESPONSE FORMAT:
📊 **Data Analysis**
[Specific findings from the data]

🧠 **Business Insights**
[Why these patterns exist]

🎯 **Recommendations**
[Actionable strategies]

Respond now: [/INST]`, contextData, conversation.String(), query)
}
