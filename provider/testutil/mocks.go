package testutil

import (
	"context"
	"sync"

	"tkta/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	ChatFunc          func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error
	ChatWithToolsFunc func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error
	CompleteFunc      func(ctx context.Context, system, prompt string) (string, error)
	PingFunc          func(ctx context.Context) error

	// State
	currentModel string
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatFunc = mock.defaultChat
	mock.ChatWithToolsFunc = mock.defaultChatWithTools
	mock.CompleteFunc = mock.defaultComplete
	mock.PingFunc = mock.defaultPing
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	if len(messages) > 0 {
		return callback("Mock response", nil)
	}
	return nil
}

func (m *MockProvider) defaultChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	return callback("Mock response with tools", nil)
}

func (m *MockProvider) defaultComplete(ctx context.Context, system, prompt string) (string, error) {
	return "Mock completion", nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return m.ChatFunc(ctx, messages, callback)
}

func (m *MockProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	return m.ChatWithToolsFunc(ctx, messages, tools, callback)
}

func (m *MockProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	return m.CompleteFunc(ctx, system, prompt)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// ScriptTurn describes one scripted model turn: text deltas streamed in
// order, then an optional tool call batch, then an optional error.
type ScriptTurn struct {
	Deltas    []string
	ToolCalls []model.ToolCall
	Err       error
}

// ScriptedProvider plays back a fixed sequence of turns, one per
// Chat/ChatWithTools call. It records the message history it was given so
// tests can assert on what would have gone over the wire.
type ScriptedProvider struct {
	mu    sync.Mutex
	turns []ScriptTurn
	next  int

	// Calls records the messages passed to each chat invocation
	Calls [][]model.Message

	currentModel string
}

// NewScriptedProvider creates a provider that plays the given turns in order.
func NewScriptedProvider(turns ...ScriptTurn) *ScriptedProvider {
	return &ScriptedProvider{turns: turns, currentModel: "scripted-model"}
}

func (s *ScriptedProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return s.ChatWithTools(ctx, messages, nil, callback)
}

func (s *ScriptedProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	s.mu.Lock()
	s.Calls = append(s.Calls, append([]model.Message(nil), messages...))
	var turn ScriptTurn
	if s.next < len(s.turns) {
		turn = s.turns[s.next]
		s.next++
	}
	s.mu.Unlock()

	for _, delta := range turn.Deltas {
		if err := ctx.Err(); err != nil {
			return err
		}
		if callback != nil {
			if err := callback(delta, nil); err != nil {
				return err
			}
		}
	}

	if turn.Err != nil {
		return turn.Err
	}

	if len(turn.ToolCalls) > 0 && callback != nil {
		return callback("", turn.ToolCalls)
	}

	return nil
}

func (s *ScriptedProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	return "scripted completion", nil
}

func (s *ScriptedProvider) GetModel() string {
	return s.currentModel
}

func (s *ScriptedProvider) SetModel(model string) {
	s.currentModel = model
}

func (s *ScriptedProvider) Ping(ctx context.Context) error {
	return nil
}
