package models

import (
	"bytes"
	"encoding/json"
)

// ToolCallEnvelope is the webhook body the voice platform posts for each
// tool invocation during a call.
type ToolCallEnvelope struct {
	Message struct {
		Type      string     `json:"type"`
		ToolCalls []ToolCall `json:"toolCalls"`
	} `json:"message"`
}

// ToolCall names a function and carries its arguments.
type ToolCall struct {
	ID       string `json:"id"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// ToolCallResult pairs a tool call id with its serialized result.
type ToolCallResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// WebhookResponse is the reply envelope the platform expects.
type WebhookResponse struct {
	Results []ToolCallResult `json:"results"`
}

// DecodeArguments unmarshals tool arguments into dst. Some platform
// versions send the arguments object directly, others as a JSON-encoded
// string; both are accepted.
func DecodeArguments(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return err
		}
		trimmed = []byte(inner)
	}
	return json.Unmarshal(trimmed, dst)
}
