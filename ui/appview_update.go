package ui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tkta/model"
	"tkta/orchestrator"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleResize(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case orchestratorEventMsg:
		return a.handleOrchestratorEvent(msg.Event)

	case markdownRenderedMsg:
		a.store.SetRendered(msg.MessageIndex, msg.Rendered)
		a.updateViewportContent(false)
		return a, nil

	case spinner.TickMsg:
		if !a.streaming {
			return a, nil
		}
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		a.updateViewportContent(true)
		return a, cmd
	}

	return a.updateComponents(msg)
}

func (a AppView) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height

	headerHeight := 2
	footerHeight := a.textarea.Height() + 1
	a.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
	a.textarea.SetWidth(msg.Width - 2)

	var cmds []tea.Cmd
	if !a.ready {
		a.ready = true
		// First sizing: render what the restored session already holds.
		for i, m := range a.store.Messages() {
			if m.Role == model.RoleModel && m.Content != "" {
				cmds = append(cmds, a.renderMarkdownAsync(i, m.Content))
			}
		}
	}
	a.updateViewportContent(true)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modals swallow input while open.
	if a.errorMsg != "" {
		a.errorMsg = ""
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}
	if a.confirmDeleteID != 0 {
		return a.handleDeleteConfirmKey(msg)
	}
	if a.showSessionManager {
		return a.handleSessionManagerKey(msg)
	}

	switch msg.String() {
	case "alt+q", "ctrl+c":
		if a.cancelTurn != nil {
			a.cancelTurn()
		}
		return a, tea.Quit

	case "esc":
		if a.streaming && a.cancelTurn != nil {
			a.cancelTurn()
		}
		return a, nil

	case "alt+h":
		a.showHelp = true
		return a, nil

	case "alt+s":
		a.openSessionManager()
		return a, nil

	case "alt+n":
		if !a.streaming {
			a.store.NewSession()
			a.updateViewportContent(true)
		}
		return a, nil

	case "alt+y":
		a.copyLastAnswer()
		return a, nil

	case "enter":
		return a.sendMessage()
	}

	return a.updateComponents(msg)
}

func (a *AppView) sendMessage() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(a.textarea.Value())
	if text == "" || a.orch.Busy() {
		return *a, nil
	}
	a.textarea.Reset()
	a.streaming = true

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelTurn = cancel
	go a.orch.RunTurn(ctx, a.store.ActiveID(), text, nil)

	return *a, a.loadingSpinner.Tick
}

func (a AppView) handleOrchestratorEvent(ev orchestrator.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{a.waitForEvent()}

	switch ev.(type) {
	case orchestrator.TurnDone:
		a.streaming = false
		if a.cancelTurn != nil {
			a.cancelTurn()
			a.cancelTurn = nil
		}
		messages := a.store.Messages()
		last := len(messages) - 1
		if last >= 0 && messages[last].Role == model.RoleModel && messages[last].Content != "" {
			cmds = append(cmds, a.renderMarkdownAsync(last, messages[last].Content))
		}
		a.updateViewportContent(true)

	default:
		a.updateViewportContent(true)
	}

	return a, tea.Batch(cmds...)
}

func (a *AppView) copyLastAnswer() {
	messages := a.store.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleModel && messages[i].Content != "" {
			if err := clipboard.WriteAll(messages[i].Content); err != nil {
				a.errorMsg = "Không thể sao chép vào clipboard:\n" + err.Error()
			}
			return
		}
	}
}

// updateComponents forwards everything else to the focused widgets.
func (a AppView) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)

	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}
