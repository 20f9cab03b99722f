// Package orchestrator runs conversation turns: it streams the model's
// answer into the active session, executes any tool calls the model issues,
// and streams the follow-up answer that uses the results. One turn runs at
// a time; everything the UI shows during a turn is driven by the event sink.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"tkta/config"
	"tkta/model"
	"tkta/storage"
	"tkta/tools"
)

// ErrTurnInFlight is returned when RunTurn is called while a turn is
// already running. Callers treat it as a no-op, not a failure.
var ErrTurnInFlight = errors.New("a turn is already in flight")

// Apology replaces the trailing message when a turn fails partway.
const Apology = "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại."

// State is the orchestrator's position in the turn lifecycle.
type State int

const (
	StateIdle State = iota
	StateStreamingInitial
	StateToolsPending
	StateToolsExecuting
	StateStreamingFinal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreamingInitial:
		return "streaming_initial"
	case StateToolsPending:
		return "tools_pending"
	case StateToolsExecuting:
		return "tools_executing"
	case StateStreamingFinal:
		return "streaming_final"
	default:
		return "unknown"
	}
}

// Orchestrator drives one conversation turn at a time against a provider,
// writing every visible change through the session store and reporting it
// to the sink.
type Orchestrator struct {
	provider model.Provider
	executor *tools.Executor
	store    *storage.Store
	tools    []mcptypes.Tool
	sink     func(Event)

	inFlight atomic.Bool
	mu       sync.Mutex
	state    State

	// sessionID is the session the running turn writes to. Only the turn
	// goroutine touches it while inFlight is held.
	sessionID int64
}

// New builds an orchestrator. sink may be nil when no observer cares about
// turn progress.
func New(provider model.Provider, executor *tools.Executor, store *storage.Store, sink func(Event)) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		executor: executor,
		store:    store,
		tools:    tools.Declarations(),
		sink:     sink,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Busy reports whether a turn is currently running.
func (o *Orchestrator) Busy() bool {
	return o.inFlight.Load()
}

// RunTurn appends the user message to the named session, streams the
// model's answer into a placeholder, runs at most one tool round, and
// streams the final answer. Every write is addressed to sessionID, so
// switching the active session mid-stream cannot reroute the answer.
// A second concurrent call returns ErrTurnInFlight. Cancelling ctx stops
// the turn at the next stream chunk and surfaces context.Canceled through
// the normal error path.
func (o *Orchestrator) RunTurn(ctx context.Context, sessionID int64, text string, image *model.ImageAttachment) error {
	if !o.inFlight.CompareAndSwap(false, true) {
		return ErrTurnInFlight
	}
	o.sessionID = sessionID

	defer o.inFlight.Store(false)
	defer o.store.Flush()
	defer o.store.ReleaseImages(sessionID)
	defer o.setState(StateIdle)

	userMsg := model.Message{
		Role:      model.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
		Image:     image,
	}
	o.store.Append(sessionID, userMsg)
	o.emit(MessageAppended{Message: userMsg})

	placeholder := model.Message{Role: model.RoleModel, Timestamp: time.Now()}
	o.store.Append(sessionID, placeholder)
	o.emit(MessageAppended{Message: placeholder})

	// History snapshot excludes the placeholder being streamed into.
	transcript := o.store.MessagesOf(sessionID)
	history := make([]model.Message, 0, len(transcript)+1)
	history = append(history, model.Message{Role: model.RoleSystem, Content: tools.SystemInstruction})
	history = append(history, transcript[:len(transcript)-1]...)

	o.setState(StateStreamingInitial)
	var initial strings.Builder
	var toolCalls []model.ToolCall
	err := o.provider.ChatWithTools(ctx, history, o.tools, func(chunk string, calls []model.ToolCall) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if chunk != "" {
			initial.WriteString(chunk)
			o.updateLast(initial.String())
		}
		// Accumulate rather than overwrite: a backend may deliver the
		// batch across several callback invocations.
		toolCalls = append(toolCalls, calls...)
		return nil
	})
	if err != nil {
		return o.fail(err)
	}

	if len(toolCalls) == 0 {
		o.emit(TurnDone{})
		return nil
	}

	o.setState(StateToolsPending)
	o.updateLast(thinkingContent(toolCalls))
	o.emit(ToolRoundStarted{Calls: toolCalls})

	o.setState(StateToolsExecuting)
	results := o.executor.ExecuteBatch(ctx, toolCalls)
	if err := ctx.Err(); err != nil {
		return o.fail(err)
	}

	// Collapse the thinking text before the final answer streams in.
	o.updateLast("")

	history = append(history,
		model.Message{Role: model.RoleModel, Content: initial.String(), ToolCalls: toolCalls},
		model.Message{Role: model.RoleTool, ToolResults: results},
	)

	o.setState(StateStreamingFinal)
	var final strings.Builder
	err = o.provider.ChatWithTools(ctx, history, o.tools, func(chunk string, calls []model.ToolCall) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if chunk != "" {
			final.WriteString(chunk)
			o.updateLast(final.String())
		}
		if len(calls) > 0 && config.DebugLog != nil {
			// One tool round per turn. A second batch is dropped.
			config.DebugLog.Printf("[Orchestrator] Dropping second tool batch (%d calls)", len(calls))
		}
		return nil
	})
	if err != nil {
		return o.fail(err)
	}

	o.emit(TurnDone{})
	return nil
}

// fail replaces the trailing message with the apology and closes the turn.
func (o *Orchestrator) fail(err error) error {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Orchestrator] Turn failed in state %s: %v", o.State(), err)
	}
	o.store.ReplaceLast(o.sessionID, model.Message{
		Role:      model.RoleModel,
		Content:   Apology,
		Timestamp: time.Now(),
	})
	o.emit(MessageUpdated{Content: Apology})
	o.emit(TurnDone{Err: err})
	return err
}

func (o *Orchestrator) updateLast(content string) {
	o.store.MutateLast(o.sessionID, func(m *model.Message) {
		m.Content = content
	})
	o.emit(MessageUpdated{Content: content})
}

func (o *Orchestrator) setState(next State) {
	o.mu.Lock()
	prev := o.state
	o.state = next
	o.mu.Unlock()
	if prev != next {
		o.emit(StateChanged{From: prev, To: next})
	}
}

func (o *Orchestrator) emit(ev Event) {
	if o.sink != nil {
		o.sink(ev)
	}
}
