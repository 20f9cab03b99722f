package orchestrator

import "tkta/model"

// Event is something an observer of a running turn can act on. The sink
// receives events synchronously in the order they happen, so the sequence
// itself carries the turn's state transitions.
type Event interface {
	event()
}

// StateChanged reports a state machine transition.
type StateChanged struct {
	From, To State
}

// MessageAppended reports a message added to the active session.
type MessageAppended struct {
	Message model.Message
}

// MessageUpdated reports the newest message's content after a mutation,
// streaming deltas included.
type MessageUpdated struct {
	Content string
}

// ToolRoundStarted reports the tool calls about to execute.
type ToolRoundStarted struct {
	Calls []model.ToolCall
}

// TurnDone closes a turn. Err is nil on success, context.Canceled when the
// user interrupted, or the streaming error otherwise.
type TurnDone struct {
	Err error
}

func (StateChanged) event()     {}
func (MessageAppended) event()  {}
func (MessageUpdated) event()   {}
func (ToolRoundStarted) event() {}
func (TurnDone) event()         {}
