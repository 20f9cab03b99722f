package provider

import (
	"testing"
	"time"

	"tkta/model"

	"github.com/ollama/ollama/api"
)

func TestConvertToOllamaMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    []model.Message
		expected []api.Message
	}{
		{
			name:     "empty slice",
			input:    []model.Message{},
			expected: []api.Message{},
		},
		{
			name: "single message",
			input: []model.Message{
				{Role: model.RoleUser, Content: "Hello"},
			},
			expected: []api.Message{
				{Role: "user", Content: "Hello"},
			},
		},
		{
			name: "model role maps to assistant",
			input: []model.Message{
				{Role: model.RoleUser, Content: "Hello", Timestamp: time.Now()},
				{Role: model.RoleModel, Content: "Hi there", Timestamp: time.Now()},
				{Role: model.RoleSystem, Content: "Be helpful", Timestamp: time.Now()},
			},
			expected: []api.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi there"},
				{Role: "system", Content: "Be helpful"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToOllamaMessages(tt.input)

			if len(result) != len(tt.expected) {
				t.Fatalf("length mismatch: got %d, want %d", len(result), len(tt.expected))
			}

			for i, msg := range result {
				if msg.Role != tt.expected[i].Role {
					t.Errorf("message %d role: got %q, want %q", i, msg.Role, tt.expected[i].Role)
				}
				if msg.Content != tt.expected[i].Content {
					t.Errorf("message %d content: got %q, want %q", i, msg.Content, tt.expected[i].Content)
				}
			}
		})
	}
}

func TestConvertToOllamaMessagesToolRound(t *testing.T) {
	input := []model.Message{
		{Role: model.RoleUser, Content: "Check visa requirements"},
		{
			Role: model.RoleModel,
			ToolCalls: []model.ToolCall{
				{ID: "call-1", Name: model.ToolLookupTimatic, Arguments: map[string]any{"nationality": "VNM"}},
			},
		},
		{
			Role: model.RoleTool,
			ToolResults: []model.ToolResult{
				{ID: "call-1", Name: model.ToolLookupTimatic, Response: map[string]any{"result": "visa required"}},
			},
		},
	}

	result := ConvertToOllamaMessages(input)

	if len(result) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(result))
	}
	if result[1].Role != "assistant" {
		t.Errorf("tool-calling message role: got %q, want %q", result[1].Role, "assistant")
	}
	if len(result[1].ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call on assistant message, got %d", len(result[1].ToolCalls))
	}
	if result[1].ToolCalls[0].Function.Name != model.ToolLookupTimatic {
		t.Errorf("tool call name: got %q, want %q", result[1].ToolCalls[0].Function.Name, model.ToolLookupTimatic)
	}
	if result[2].Role != "tool" {
		t.Errorf("result message role: got %q, want %q", result[2].Role, "tool")
	}
	if result[2].Content == "" {
		t.Error("tool result content should carry the encoded response")
	}
}

func TestConvertToOllamaMessagesImage(t *testing.T) {
	input := []model.Message{
		{
			Role:    model.RoleUser,
			Content: "What does this GDS screen say?",
			Image:   &model.ImageAttachment{Data: []byte{0x89, 0x50}, MimeType: "image/png"},
		},
	}

	result := ConvertToOllamaMessages(input)

	if len(result) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result))
	}
	if len(result[0].Images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(result[0].Images))
	}
	if len(result[0].Images[0]) != 2 {
		t.Errorf("image bytes not preserved: got %d bytes", len(result[0].Images[0]))
	}
}

func TestConvertToProviderToolCalls(t *testing.T) {
	ollamaCalls := []api.ToolCall{
		{Function: api.ToolCallFunction{
			Name:      model.ToolGenerateSrDocs,
			Arguments: map[string]any{"lastName": "NGUYEN"},
		}},
	}

	result := ConvertToProviderToolCalls(ollamaCalls)

	if len(result) != 1 {
		t.Fatalf("expected 1 call, got %d", len(result))
	}
	if result[0].ID == "" {
		t.Error("converted call should get a generated ID")
	}
	if result[0].Name != model.ToolGenerateSrDocs {
		t.Errorf("name: got %q, want %q", result[0].Name, model.ToolGenerateSrDocs)
	}

	if got := ConvertToProviderToolCalls(nil); got != nil {
		t.Errorf("nil input should return nil, got %v", got)
	}
}

func TestParseToolArguments(t *testing.T) {
	args := ParseToolArguments(`{"nationality":"VNM","destination":"JPN"}`)
	if args["nationality"] != "VNM" {
		t.Errorf("nationality: got %v, want VNM", args["nationality"])
	}

	// Malformed input yields an empty map, never nil
	args = ParseToolArguments("not json")
	if args == nil {
		t.Fatal("malformed input should return empty map, got nil")
	}
	if len(args) != 0 {
		t.Errorf("malformed input should return empty map, got %v", args)
	}
}

func TestParseLeakedJSONToolCalls(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantName string
		wantNone bool
	}{
		{
			name:     "bare object",
			content:  `I'll check that. {"name": "lookupTimatic", "arguments": {"nationality": "VNM"}}`,
			wantName: "lookupTimatic",
		},
		{
			name:     "fenced object",
			content:  "```json\n{\"name\": \"generateSrDocs\", \"arguments\": {\"lastName\": \"TRAN\"}}\n```",
			wantName: "generateSrDocs",
		},
		{
			name:     "wrapped tool_call object",
			content:  "```json\n{\"tool_call\": {\"name\": \"lookupTimatic\", \"arguments\": {}}}\n```",
			wantName: "lookupTimatic",
		},
		{
			name:     "plain text",
			content:  "Khách quốc tịch VNM cần visa khi đến JPN.",
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := ParseLeakedJSONToolCalls(tt.content)
			if tt.wantNone {
				if len(calls) != 0 {
					t.Fatalf("expected no calls, got %v", calls)
				}
				return
			}
			if len(calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(calls))
			}
			if calls[0].Name != tt.wantName {
				t.Errorf("name: got %q, want %q", calls[0].Name, tt.wantName)
			}
			if calls[0].Arguments == nil {
				t.Error("arguments should never be nil")
			}
		})
	}
}

func TestParseLeakedXMLToolCalls(t *testing.T) {
	content := `<tool_call>{"name": "lookupTimatic", "arguments": {"nationality": "VNM", "destination": "KOR"}}</tool_call>`

	calls := ParseLeakedXMLToolCalls(content)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Name != "lookupTimatic" {
		t.Errorf("name: got %q, want %q", calls[0].Name, "lookupTimatic")
	}
	if calls[0].Arguments["destination"] != "KOR" {
		t.Errorf("destination: got %v, want KOR", calls[0].Arguments["destination"])
	}

	if got := ParseLeakedXMLToolCalls("no tags here"); len(got) != 0 {
		t.Errorf("expected no calls, got %v", got)
	}
}
