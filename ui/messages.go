package ui

import "tkta/orchestrator"

// orchestratorEventMsg wraps a turn event for the bubbletea update loop.
type orchestratorEventMsg struct {
	Event orchestrator.Event
}

// markdownRenderedMsg delivers an async markdown render result.
type markdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}
