package testutil

import (
	"time"

	"tkta/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   "Khách Việt Nam đi Nhật có cần visa không?",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleModel,
			Content:   "Để tôi tra cứu TIMATIC cho bạn.",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleUser,
			Content:   "Cảm ơn, tra giúp tôi nhé.",
			Timestamp: time.Now(),
		},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}

// ToolRoundMessages returns a conversation containing a completed tool round:
// user request, model tool call, and the matching tool result.
func ToolRoundMessages() []model.Message {
	return []model.Message{
		{
			Role:    model.RoleUser,
			Content: "Khách quốc tịch VNM đi JPN cần giấy tờ gì?",
		},
		{
			Role: model.RoleModel,
			ToolCalls: []model.ToolCall{
				{
					ID:   "call-1",
					Name: model.ToolLookupTimatic,
					Arguments: map[string]any{
						"nationality": "VNM",
						"destination": "JPN",
					},
				},
			},
		},
		{
			Role: model.RoleTool,
			ToolResults: []model.ToolResult{
				{
					ID:       "call-1",
					Name:     model.ToolLookupTimatic,
					Response: map[string]any{"result": "Khách quốc tịch VNM cần visa khi đến JPN."},
				},
			},
		},
	}
}

// TestTools returns sample MCP tools for testing
func TestTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "get_weather",
			Description: "Get the current weather for a location",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "The city and state, e.g. San Francisco, CA",
					},
				},
				Required: []string{"location"},
			},
		},
		{
			Name:        "calculate",
			Description: "Perform a mathematical calculation",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"expression": map[string]any{
						"type":        "string",
						"description": "The mathematical expression to evaluate",
					},
				},
				Required: []string{"expression"},
			},
		},
	}
}

// SystemMessage returns a system message for testing
func SystemMessage(content string) model.Message {
	return model.Message{
		Role:      model.RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}
