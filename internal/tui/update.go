package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/domain"
	"github.com/naka-gawa/repo-catalog/internal/export"
	"github.com/naka-gawa/repo-catalog/internal/usecase"
)

// exportedMsg reports the outcome of an export.
type exportedMsg struct {
	Path string
	Err  error
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(20, msg.Width-6)
		m.clampCursor()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(usecase.Snapshot(msg))
		return m, m.feed.nextSnapshot()

	case bookmarksChangedMsg:
		m.refreshBookmarks()
		return m, m.feed.nextBookmarkChange()

	case exportedMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Export failed: %v", msg.Err), true)
		} else {
			m.setStatus("Exported to "+msg.Path, false)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applySnapshot installs snap unless a newer one is already shown.
func (m *Model) applySnapshot(snap usecase.Snapshot) {
	if snap.Version < m.snap.Version {
		return
	}
	if snap.SearchTerm != m.snap.SearchTerm {
		m.cursor, m.offset = 0, 0
	}
	m.snap = snap
	m.clampCursor()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// handleKeyMsg handles keyboard input based on current state
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.searching {
		return m.handleSearchKeys(msg)
	}
	switch m.state {
	case StateDetail:
		return m.handleDetailKeys(msg)
	default:
		return m.handleListKeys(msg)
	}
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if term := m.search.Value(); term != m.snap.SearchTerm {
		m.ctrl.SetSearchTerm(term)
		m.applySnapshot(m.ctrl.Snapshot())
	}
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "/":
		m.searching = true
		return m, m.search.Focus()

	case "esc":
		if m.snap.SearchTerm != "" {
			m.search.SetValue("")
			m.ctrl.SetSearchTerm("")
			m.applySnapshot(m.ctrl.Snapshot())
		}
		return m, nil

	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.cardsPerScreen())
	case "pgdown", " ":
		m.moveCursor(m.cardsPerScreen())
	case "home", "g":
		m.moveCursor(-len(m.snap.Visible))
	case "end", "G":
		m.moveCursor(len(m.snap.Visible))

	case "enter":
		if repo, ok := m.selected(); ok {
			m.detail = &repo
			m.state = StateDetail
		}

	case "b":
		if repo, ok := m.selected(); ok {
			m.toggleBookmark(repo.ID)
		}

	case "c":
		return m, m.exportCmd(export.FormatCSV)
	case "J":
		return m, m.exportCmd(export.FormatJSON)

	case "r":
		if m.snap.Status == usecase.StatusError {
			if err := m.ctrl.Retry(); err != nil {
				m.logger.Warn("retry rejected", zap.Error(err))
			}
			m.applySnapshot(m.ctrl.Snapshot())
		}
	}
	return m, nil
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "h", "left":
		m.state = StateList
		m.detail = nil
	case "b":
		if m.detail != nil {
			m.toggleBookmark(m.detail.ID)
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	if m.sentinelInView() {
		m.fireSentinel()
	}
}

func (m *Model) toggleBookmark(id int64) {
	if m.bookmarks == nil {
		return
	}
	repo, ok := m.findRepository(id)
	if !ok {
		return
	}
	if m.bookmarks.Toggle(repo) {
		m.setStatus("Bookmarked "+repo.Name, false)
	} else {
		m.setStatus("Removed bookmark for "+repo.Name, false)
	}
	m.refreshBookmarks()
}

func (m Model) findRepository(id int64) (domain.Repository, bool) {
	if m.detail != nil && m.detail.ID == id {
		return *m.detail, true
	}
	for _, r := range m.snap.Visible {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Repository{}, false
}

// exportCmd writes the whole filtered collection, not just the visible page.
func (m Model) exportCmd(f export.Format) tea.Cmd {
	repos := m.ctrl.Filtered()
	dir, now, logger := m.exportDir, m.now(), m.logger
	return func() tea.Msg {
		path, err := export.Write(dir, export.DefaultBase, f, repos, now)
		if err != nil && !errors.Is(err, export.ErrNothingToExport) {
			logger.Error("export failed", zap.String("format", string(f)), zap.Error(err))
		}
		if err == nil {
			logger.Info("exported repositories", zap.String("path", path), zap.Int("count", len(repos)))
		}
		return exportedMsg{Path: path, Err: err}
	}
}
