// Package classifier turns oracle responses into validated verdicts and runs
// classification passes.
package classifier

import (
	"encoding/json"
	"strings"

	"github.com/yousefh409/llm-censorship/pkg/oracle"
	"github.com/yousefh409/llm-censorship/pkg/types"
)

// Parse turns a raw oracle payload into a verdict. It is total: every input
// yields either a valid verdict or an ERROR verdict, never an error return.
//
// Decode failure keeps the raw payload verbatim in the reasoning for
// diagnosability. Action strings outside the configured taxonomy pass through
// unchanged so consumers can surface drift.
func Parse(raw oracle.RawResponse) types.Verdict {
	payload := stripCodeFence(strings.TrimSpace(string(raw)))

	var decoded struct {
		Action       *string         `json:"action"`
		Reasoning    *string         `json:"reasoning"`
		ReplyContent json.RawMessage `json:"reply_content"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return types.ErrorVerdict("Failed to parse JSON: " + string(raw))
	}

	verdict := types.Verdict{Action: types.ActionError, Reasoning: "Error parsing"}
	if decoded.Action != nil {
		verdict.Action = types.Action(*decoded.Action)
	}
	if decoded.Reasoning != nil {
		verdict.Reasoning = *decoded.Reasoning
	}

	if len(decoded.ReplyContent) > 0 && string(decoded.ReplyContent) != "null" {
		var reply string
		if err := json.Unmarshal(decoded.ReplyContent, &reply); err != nil {
			return types.ErrorVerdict("Error: " + err.Error())
		}
		verdict.ReplyContent = &reply
	}
	return verdict
}

// stripCodeFence unwraps a markdown-fenced JSON object. Gemini fences its
// JSON output now and then even with a JSON response MIME type.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	trimmed := strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
