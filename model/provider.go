package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts LLM provider implementations (Anthropic, OpenAI,
// OpenRouter, Ollama) using provider-agnostic types from the model layer.
//
// The interface lives here rather than in the provider package to avoid
// import cycles: provider implementations import model, and everything else
// depends on model.Provider without importing provider.
type Provider interface {
	// Chat sends messages and streams the response back via callback.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ChatWithTools sends messages with the declared tools. Text fragments
	// arrive through the callback; any tool calls the model issued arrive
	// in the final callback invocation once the stream closes.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// Complete performs a single non-streaming request/response exchange.
	// Used for the TIMATIC sub-lookup and the structured extractions.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of streamed response. toolCalls is
// nil for plain text fragments and non-nil exactly once, at stream end, when
// the model requested tools.
type StreamCallback func(chunk string, toolCalls []ToolCall) error
