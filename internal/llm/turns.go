package llm

import "strings"

// normalizeTurns prepares a chat history for vendors that require the
// conversation to open with the learner and to alternate roles strictly.
// Leading tutor turns (a greeting the client rendered locally) are dropped
// and consecutive turns from the same role are joined with a blank line,
// which happens when a failed learner message is retried by the client.
func normalizeTurns(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		role := ParseRole(string(m.Role))
		if len(out) == 0 && role == RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, Message{Role: role, Content: m.Content})
	}
	return out
}
