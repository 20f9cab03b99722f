package provider

import (
	"encoding/json"
	"regexp"
	"strings"

	"tkta/model"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
)

// ConvertToOllamaMessages converts model.Message to Ollama api.Message.
//
// Tool rounds are mapped onto Ollama's native protocol: a model message
// carrying ToolCalls becomes an assistant message with tool calls attached,
// and a tool message carrying ToolResults becomes one "tool" message per
// result. A live image attachment rides along as raw bytes.
//
// The Timestamp and Rendered fields are not preserved; the Ollama API has
// no place for them.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg.Role == model.RoleTool && len(msg.ToolResults) > 0:
			for _, tr := range msg.ToolResults {
				result = append(result, api.Message{
					Role:    "tool",
					Content: encodeToolResponse(tr),
				})
			}

		case msg.Role == model.RoleModel:
			result = append(result, api.Message{
				Role:      "assistant",
				Content:   msg.Content,
				ToolCalls: ConvertFromProviderToolCalls(msg.ToolCalls),
			})

		default:
			m := api.Message{
				Role:    mapRoleToWire(msg.Role),
				Content: msg.Content,
			}
			if msg.Image != nil {
				m.Images = []api.ImageData{api.ImageData(msg.Image.Data)}
			}
			result = append(result, m)
		}
	}
	return result
}

// mapRoleToWire maps conversation roles to the "system"/"user"/"assistant"
// vocabulary shared by every supported wire protocol.
func mapRoleToWire(role string) string {
	switch role {
	case model.RoleSystem:
		return "system"
	case model.RoleModel:
		return "assistant"
	default:
		return "user"
	}
}

// ParseToolArguments parses a JSON arguments string into a map.
// Used by the OpenAI and OpenRouter providers for tool call parsing.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return make(map[string]any)
	}
	return args
}

// encodeToolResponse serializes a tool result payload for wire protocols
// that carry results as plain strings.
func encodeToolResponse(tr model.ToolResult) string {
	raw, err := json.Marshal(tr.Response)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// newToolCallID generates a correlation ID for providers that do not assign
// one natively.
func newToolCallID() string {
	return uuid.NewString()
}

// ConvertToProviderToolCalls converts Ollama api.ToolCall to provider-agnostic
// model.ToolCall. Ollama does not assign call identifiers, so each call gets
// a generated UUID to keep result correlation uniform across providers.
//
// Returns nil if the input is nil or empty.
func ConvertToProviderToolCalls(ollamaCalls []api.ToolCall) []model.ToolCall {
	if len(ollamaCalls) == 0 {
		return nil
	}

	result := make([]model.ToolCall, len(ollamaCalls))
	for i, call := range ollamaCalls {
		result[i] = model.ToolCall{
			ID:        newToolCallID(),
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return result
}

// ConvertFromProviderToolCalls converts provider-agnostic model.ToolCall to
// Ollama api.ToolCall. Returns nil if the input is nil or empty.
func ConvertFromProviderToolCalls(providerCalls []model.ToolCall) []api.ToolCall {
	if len(providerCalls) == 0 {
		return nil
	}

	result := make([]api.ToolCall, len(providerCalls))
	for i, call := range providerCalls {
		result[i] = api.ToolCall{
			Function: api.ToolCallFunction{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		}
	}
	return result
}

// leakedJSONPattern matches a JSON object carrying "name" and "arguments"
// keys, optionally wrapped in a markdown code fence. Some models emit their
// tool calls as text instead of using the native API.
var leakedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```|(\\{[^{}]*\"name\"[^{}]*\"arguments\"\\s*:\\s*\\{[^{}]*\\}[^{}]*\\})")

// leakedXMLPattern matches <tool_call>...</tool_call> segments whose body is
// a JSON tool call.
var leakedXMLPattern = regexp.MustCompile(`(?s)<tool_call>\s*(.*?)\s*</tool_call>`)

type leakedCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	ToolCall  *struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"tool_call"`
}

func (lc leakedCall) toToolCall() (model.ToolCall, bool) {
	name, args := lc.Name, lc.Arguments
	if lc.ToolCall != nil {
		name, args = lc.ToolCall.Name, lc.ToolCall.Arguments
	}
	if name == "" {
		return model.ToolCall{}, false
	}
	if args == nil {
		args = make(map[string]any)
	}
	return model.ToolCall{ID: newToolCallID(), Name: name, Arguments: args}, true
}

// ParseLeakedJSONToolCalls scans streamed text for tool calls a model leaked
// as JSON instead of issuing them through the API. Used as a fallback when a
// stream finishes without any native tool calls.
func ParseLeakedJSONToolCalls(content string) []model.ToolCall {
	var calls []model.ToolCall

	for _, match := range leakedJSONPattern.FindAllStringSubmatch(content, -1) {
		candidate := match[1]
		if candidate == "" {
			candidate = match[2]
		}

		var lc leakedCall
		if err := json.Unmarshal([]byte(candidate), &lc); err != nil {
			continue
		}
		if call, ok := lc.toToolCall(); ok {
			calls = append(calls, call)
		}
	}

	return calls
}

// ParseLeakedXMLToolCalls scans streamed text for tool calls leaked inside
// <tool_call> tags, the format some instruction-tuned models fall back to.
func ParseLeakedXMLToolCalls(content string) []model.ToolCall {
	var calls []model.ToolCall

	for _, match := range leakedXMLPattern.FindAllStringSubmatch(content, -1) {
		body := strings.TrimSpace(match[1])

		var lc leakedCall
		if err := json.Unmarshal([]byte(body), &lc); err != nil {
			continue
		}
		if call, ok := lc.toToolCall(); ok {
			calls = append(calls, call)
		}
	}

	return calls
}
