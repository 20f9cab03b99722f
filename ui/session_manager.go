package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"tkta/storage"
)

func (a *AppView) openSessionManager() {
	a.showSessionManager = true
	a.sessionList = a.store.Sessions()
	a.selectedSessionIdx = 0
	a.sessionFilterMode = false
	a.sessionFilterInput.Reset()
	a.filteredSessions = nil
}

func (a *AppView) closeSessionManager() {
	a.showSessionManager = false
	a.sessionFilterMode = false
	a.sessionFilterInput.Blur()
}

// applySessionFilter fuzzy-matches the filter text against session titles.
func (a *AppView) applySessionFilter() {
	query := a.sessionFilterInput.Value()
	if query == "" {
		a.filteredSessions = nil
		return
	}

	titles := make([]string, len(a.sessionList))
	for i, s := range a.sessionList {
		titles[i] = s.Title
	}

	matches := fuzzy.Find(query, titles)
	filtered := make([]storage.Session, 0, len(matches))
	seen := make(map[int64]bool)
	for _, m := range matches {
		filtered = append(filtered, a.sessionList[m.Index])
		seen[a.sessionList[m.Index].ID] = true
	}

	// Transcript hits rank below title matches.
	for _, hit := range a.store.Search(query) {
		if seen[hit.SessionID] {
			continue
		}
		for _, s := range a.sessionList {
			if s.ID == hit.SessionID {
				filtered = append(filtered, s)
				seen[s.ID] = true
				break
			}
		}
	}
	a.filteredSessions = filtered
	if a.selectedSessionIdx >= len(filtered) {
		a.selectedSessionIdx = 0
	}
}

func (a AppView) handleSessionManagerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.sessionFilterMode {
		switch msg.String() {
		case "esc":
			a.sessionFilterMode = false
			a.sessionFilterInput.Reset()
			a.filteredSessions = nil
			return a, nil
		case "enter":
			return a.selectHighlightedSession()
		case "alt+j", "down":
			a.moveSessionCursor(1)
			return a, nil
		case "alt+k", "up":
			a.moveSessionCursor(-1)
			return a, nil
		default:
			var cmd tea.Cmd
			a.sessionFilterInput, cmd = a.sessionFilterInput.Update(msg)
			a.applySessionFilter()
			return a, cmd
		}
	}

	switch msg.String() {
	case "esc":
		a.closeSessionManager()
		return a, nil

	case "j", "down":
		a.moveSessionCursor(1)
		return a, nil

	case "k", "up":
		a.moveSessionCursor(-1)
		return a, nil

	case "/":
		a.sessionFilterMode = true
		a.sessionFilterInput.Focus()
		a.selectedSessionIdx = 0
		return a, nil

	case "n":
		a.store.NewSession()
		a.closeSessionManager()
		a.updateViewportContent(true)
		return a, nil

	case "d":
		sessions := a.visibleSessions()
		if a.selectedSessionIdx < len(sessions) {
			a.confirmDeleteID = sessions[a.selectedSessionIdx].ID
			a.confirmDeleteTitle = sessions[a.selectedSessionIdx].Title
		}
		return a, nil

	case "enter":
		return a.selectHighlightedSession()
	}

	return a, nil
}

func (a AppView) handleDeleteConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		a.store.Delete(a.confirmDeleteID)
		a.confirmDeleteID = 0
		a.confirmDeleteTitle = ""
		a.sessionList = a.store.Sessions()
		a.applySessionFilter()
		if a.selectedSessionIdx >= len(a.visibleSessions()) && a.selectedSessionIdx > 0 {
			a.selectedSessionIdx--
		}
		a.updateViewportContent(true)
	case "n", "N", "esc":
		a.confirmDeleteID = 0
		a.confirmDeleteTitle = ""
	}
	return a, nil
}

func (a *AppView) moveSessionCursor(delta int) {
	sessions := a.visibleSessions()
	if len(sessions) == 0 {
		return
	}
	a.selectedSessionIdx += delta
	if a.selectedSessionIdx < 0 {
		a.selectedSessionIdx = 0
	}
	if a.selectedSessionIdx >= len(sessions) {
		a.selectedSessionIdx = len(sessions) - 1
	}
}

func (a AppView) selectHighlightedSession() (tea.Model, tea.Cmd) {
	sessions := a.visibleSessions()
	if a.selectedSessionIdx < len(sessions) {
		a.store.Select(sessions[a.selectedSessionIdx].ID)
	}
	a.closeSessionManager()
	a.updateViewportContent(true)
	return a, nil
}

func (a AppView) renderSessionManager() string {
	modalWidth := a.width - 10
	if modalWidth > 110 {
		modalWidth = 110
	}
	modalHeight := a.height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Phiên trò chuyện")

	displayList := a.visibleSessions()

	var header string
	if a.sessionFilterMode {
		header = a.sessionFilterInput.View()
	} else if len(displayList) == len(a.sessionList) {
		header = fmt.Sprintf("%d phiên", len(a.sessionList))
	} else {
		header = fmt.Sprintf("%d / %d phiên", len(displayList), len(a.sessionList))
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var sessionLines []string
	maxLines := modalHeight - 8

	if len(displayList) == 0 {
		emptyMsg := "Không có phiên nào khớp"
		if !a.sessionFilterMode {
			emptyMsg = "Chưa có phiên trò chuyện nào"
		}
		sessionLines = append(sessionLines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(displayList)
		if len(displayList) > maxLines {
			if a.selectedSessionIdx < maxLines/2 {
				endIdx = maxLines
			} else if a.selectedSessionIdx >= len(displayList)-maxLines/2 {
				startIdx = len(displayList) - maxLines
			} else {
				startIdx = a.selectedSessionIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		activeID := a.store.ActiveID()
		for i := startIdx; i < endIdx && i < len(displayList); i++ {
			session := displayList[i]

			indicator := "  "
			if i == a.selectedSessionIdx {
				indicator = "▶ "
			}

			title := session.Title
			maxTitleWidth := modalWidth - 36
			if runewidth.StringWidth(title) > maxTitleWidth {
				title = runewidth.Truncate(title, maxTitleWidth-3, "") + "..."
			}

			titleStyled := title
			if i == a.selectedSessionIdx {
				titleStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(title)
			} else if session.ID == activeID {
				titleStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(title)
			}

			leftSide := indicator + titleStyled
			leftVisualWidth := len(indicator) + lipgloss.Width(title)

			hasCurrentMarker := session.ID == activeID

			msgCount := fmt.Sprintf("%d tin nhắn", len(session.Messages))
			timeAgo := formatTimeAgo(time.UnixMilli(session.ID))
			rightSide := fmt.Sprintf("%s  %10s", msgCount, timeAgo)

			spacing := modalWidth - 4 - leftVisualWidth - lipgloss.Width(rightSide)
			if hasCurrentMarker {
				spacing -= 12 // " (hiện tại)" marker width
			}
			if spacing < 2 {
				spacing = 2
			}

			if hasCurrentMarker {
				markerColor := accentColor
				if i == a.selectedSessionIdx {
					markerColor = successColor
				}
				leftSide += " " + lipgloss.NewStyle().Foreground(markerColor).Render("(hiện tại)")
			}

			rightStyled := rightSide
			if i == a.selectedSessionIdx {
				rightStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(rightSide)
			} else if session.ID == activeID {
				rightStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(rightSide)
			}

			styledLine := fmt.Sprintf("  %s%s%s  ", leftSide, strings.Repeat(" ", spacing), rightStyled)
			sessionLines = append(sessionLines, lipgloss.NewStyle().Width(modalWidth).Render(styledLine))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	sessionLines = append([]string{emptyLine}, sessionLines...)
	sessionLines = append(sessionLines, emptyLine)

	var footerText string
	if a.sessionFilterMode {
		footerText = FormatFooter("Gõ", "để lọc", "Alt+J/K", "Di chuyển", "Enter", "Mở", "Esc", "Hủy")
	} else {
		footerText = FormatFooter("/", "Lọc", "j/k", "Di chuyển", "Enter", "Mở", "n", "Mới", "d", "Xóa", "Esc", "Đóng")
	}
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	sections := []string{titleSection, headerSection}
	sections = append(sections, sessionLines...)
	sections = append(sections, footerSection)

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n"))
}

// formatTimeAgo formats a time as a relative string (e.g., "2h", "3d")
func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "vừa xong"
	} else if duration < time.Hour {
		return fmt.Sprintf("%dp trước", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dg trước", int(duration.Hours()))
	} else if duration < 30*24*time.Hour {
		return fmt.Sprintf("%dng trước", int(duration.Hours()/24))
	}
	return fmt.Sprintf("%dth trước", int(duration.Hours()/24/30))
}
