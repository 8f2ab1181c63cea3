package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// archiveView is the cursor state of the archive list.
type archiveView struct {
	cursor int
	offset int
}

func (m *AppModel) openArchive() {
	m.currentView = ViewArchive
	m.archive.cursor = min(m.archive.cursor, max(len(m.board.Archive)-1, 0))
	m.focusLane(m.lane)
	m.layout()
}

func (m *AppModel) closeArchive() {
	m.currentView = ViewBoard
	m.focusLane(m.lane)
	m.layout()
}

func (m *AppModel) updateArchive(msg tea.KeyMsg) tea.Cmd {
	n := len(m.board.Archive)
	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeArchive()
	case key.Matches(msg, m.keys.List.Up):
		if m.archive.cursor > 0 {
			m.archive.cursor--
		}
	case key.Matches(msg, m.keys.List.Down):
		if m.archive.cursor < n-1 {
			m.archive.cursor++
		}
	case key.Matches(msg, m.keys.Restore):
		return m.restoreSelected()
	case key.Matches(msg, m.keys.ClearArchive):
		if n > 0 {
			return m.showClearConfirm()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

// restoreSelected puts the archived item under the cursor back at the end
// of the lane it came from.
func (m *AppModel) restoreSelected() tea.Cmd {
	i := m.archive.cursor
	if i < 0 || i >= len(m.board.Archive) {
		return nil
	}
	archived := m.board.Archive[i]
	lane := m.board.RestoreLane(i)
	b, err := m.board.RestoreItem(i, lane)
	if err != nil {
		m.fail("restore item", err)
		return nil
	}
	m.board = b
	m.dirty = true
	m.archive.cursor = min(i, max(len(b.Archive)-1, 0))
	laneTitle := b.Lanes[lane].Title
	m.logger.Info("item restored", "lane", laneTitle, "item", archived.ID)
	m.emitter.EmitItemCreated(archived.Item, laneTitle)
	m.setStatus(fmt.Sprintf("Restored %q to %s", truncate(archived.Title, 40), laneTitle))
	return m.afterMutation()
}

func (m *AppModel) showClearConfirm() tea.Cmd {
	m.clearConfirmValue = false
	modalWidth := min(50, m.width-8)
	m.clearConfirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("clear").
				Title(fmt.Sprintf("Clear %d archived items?", len(m.board.Archive))).
				Description("Archived items are deleted for good.").
				Affirmative("Clear").
				Negative("Cancel").
				Value(&m.clearConfirmValue),
		),
	).WithTheme(huh.ThemeDracula()).
		WithWidth(max(modalWidth-6, 20)).
		WithShowHelp(true)
	m.currentView = ViewClearConfirm
	return m.clearConfirm.Init()
}

func (m *AppModel) updateClearConfirm(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.clearConfirm = nil
		m.currentView = ViewArchive
		return nil
	}

	form, cmd := m.clearConfirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.clearConfirm = f
	}

	switch m.clearConfirm.State {
	case huh.StateCompleted:
		m.clearConfirm = nil
		m.currentView = ViewArchive
		if !m.clearConfirmValue {
			return nil
		}
		n := len(m.board.Archive)
		m.board = m.board.ClearArchive()
		m.archive = archiveView{}
		m.dirty = true
		m.logger.Info("archive cleared", "items", n)
		m.setStatus(fmt.Sprintf("Cleared %d archived items", n))
		return m.afterMutation()
	case huh.StateAborted:
		m.clearConfirm = nil
		m.currentView = ViewArchive
		return nil
	}
	return cmd
}

func (m *AppModel) viewClearConfirm() string {
	if m.clearConfirm == nil {
		return ""
	}
	header := m.styles.Error.
		Bold(true).
		MarginBottom(1).
		Render("Clear Archive")

	modal := m.styles.Modal.
		BorderForeground(lipgloss.Color(m.theme.Error)).
		Width(min(50, m.width-8)).
		Render(lipgloss.JoinVertical(lipgloss.Center, header, m.clearConfirm.View()))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(modal)
}

func (m *AppModel) viewArchive() string {
	height := m.bodyHeight()
	box := m.styles.ColumnHi.Width(max(m.width-2, 1)).Height(height - 2)

	items := m.board.Archive
	header := m.styles.HeaderHi.Render(" Archive ") + " " + m.styles.Count.Render(fmt.Sprint(len(items)))
	if len(items) == 0 {
		return box.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.styles.Dim.Render("Nothing archived")))
	}

	// Keep the cursor in the window.
	rows := max(height-4, 1)
	if m.archive.cursor < m.archive.offset {
		m.archive.offset = m.archive.cursor
	}
	if m.archive.cursor >= m.archive.offset+rows {
		m.archive.offset = m.archive.cursor - rows + 1
	}

	var lines []string
	end := min(m.archive.offset+rows, len(items))
	for i := m.archive.offset; i < end; i++ {
		a := items[i]
		when := a.ArchivedAt.Format("2006-01-02 15:04")
		meta := m.styles.Dim.Render(fmt.Sprintf("  %s · %s", a.LaneTitle, when))
		title := strings.ReplaceAll(a.Title, "\n", " ")
		if i == m.archive.cursor {
			lines = append(lines, m.styles.Selected.Render("› "+title)+meta)
		} else {
			lines = append(lines, "  "+title+meta)
		}
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{header, ""}, lines...)...))
}
