// Package ui is the terminal front end: a chat view with streaming answers,
// a session manager overlay, and small helper modals. All conversation
// behavior lives in the orchestrator; the UI only observes its events and
// renders the session store.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tkta/model"
	"tkta/orchestrator"
	"tkta/storage"
)

type AppView struct {
	store    *storage.Store
	orch     *orchestrator.Orchestrator
	provider model.Provider

	// UI components
	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	// Streaming state
	streaming  bool
	cancelTurn context.CancelFunc
	events     chan orchestrator.Event

	// Session manager state
	showSessionManager bool
	sessionList        []storage.Session
	selectedSessionIdx int
	sessionFilterMode  bool
	sessionFilterInput textinput.Model
	filteredSessions   []storage.Session
	confirmDeleteID    int64
	confirmDeleteTitle string

	// Help and error modals
	showHelp bool
	errorMsg string
}

// New builds the app view around an existing store and provider. The
// orchestrator is constructed through orchFn so its event sink can feed the
// channel the update loop drains.
func New(store *storage.Store, provider model.Provider, orchFn func(sink func(orchestrator.Event)) *orchestrator.Orchestrator) AppView {
	ta := textarea.New()
	ta.Placeholder = "Nhập yêu cầu nghiệp vụ của bạn..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.CharLimit = 64

	events := make(chan orchestrator.Event, 64)
	orch := orchFn(func(ev orchestrator.Event) { events <- ev })

	return AppView{
		store:              store,
		orch:               orch,
		provider:           provider,
		textarea:           ta,
		viewport:           vp,
		loadingSpinner:     sp,
		events:             events,
		sessionFilterInput: filterInput,
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.waitForEvent())
}

// waitForEvent blocks on the orchestrator event channel; the handler
// re-issues it after every event so the stream keeps flowing.
func (a AppView) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return orchestratorEventMsg{Event: <-a.events}
	}
}

func (a AppView) View() string {
	if !a.ready {
		return "Đang khởi động..."
	}

	if a.errorMsg != "" {
		return renderErrorModal(a.errorMsg, a.width, a.height)
	}
	if a.showHelp {
		return renderHelpModal(a.width, a.height)
	}
	if a.confirmDeleteID != 0 {
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "Xóa phiên trò chuyện?",
			Message: a.confirmDeleteTitle,
		}, a.width, a.height)
	}
	if a.showSessionManager {
		return a.renderSessionManager()
	}

	appText := AssistantStyle.Render("TKTA")
	modelText := TitleStyle.Render(fmt.Sprintf(" - %s", a.provider.GetModel()))
	sessionText := UserStyle.Render(fmt.Sprintf(" - %s", a.store.Active().Title))
	title := appText + modelText + sessionText
	if a.streaming {
		title += DimStyle.Render(" " + a.loadingSpinner.View())
	}

	statusBar := StatusStyle.Render(FormatFooter(
		"Enter", "Gửi",
		"Alt+Enter", "Xuống dòng",
		"Alt+S", "Phiên",
		"Alt+N", "Phiên mới",
		"Alt+Y", "Sao chép",
		"Esc", "Hủy",
		"Alt+H", "Trợ giúp",
		"Alt+Q", "Thoát",
	))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		a.viewport.View(),
		a.textarea.View(),
		statusBar,
	)
}

func (a AppView) visibleSessions() []storage.Session {
	if a.sessionFilterMode && a.sessionFilterInput.Value() != "" {
		return a.filteredSessions
	}
	return a.sessionList
}
