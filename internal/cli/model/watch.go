package model

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/waywake/internal/cli/styles"
	"github.com/bnema/waywake/internal/daemon"
)

// statusMsg carries one applied decision from the daemon.
type statusMsg daemon.Status

// streamClosedMsg means the daemon stopped and no more updates will come.
type streamClosedMsg struct{}

// WatchModel is the live dashboard shown by `waywake watch`. It renders
// the daemon's latest decision and quits when the daemon stops or the user
// asks to.
type WatchModel struct {
	theme   *styles.Theme
	spinner spinner.Model

	statuses <-chan daemon.Status
	cancel   context.CancelFunc

	current  daemon.Status
	haveData bool
	applied  int
	width    int
}

// NewWatchModel creates the dashboard. cancel stops the daemon when the
// user quits the view.
func NewWatchModel(theme *styles.Theme, statuses <-chan daemon.Status, cancel context.CancelFunc) WatchModel {
	return WatchModel{
		theme:    theme,
		spinner:  styles.NewSpinner(theme),
		statuses: statuses,
		cancel:   cancel,
	}
}

// waitForStatus blocks for the next daemon update.
func waitForStatus(ch <-chan daemon.Status) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return statusMsg(s)
	}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForStatus(m.statuses),
		tea.EnterAltScreen,
	)
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case statusMsg:
		m.current = daemon.Status(msg)
		m.haveData = true
		m.applied++
		return m, waitForStatus(m.statuses)

	case streamClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	t := m.theme

	iconStyle := lipgloss.NewStyle().Foreground(t.Accent)
	title := lipgloss.JoinHorizontal(lipgloss.Center,
		iconStyle.Render(styles.IconAudio),
		" ",
		t.Title.Render("waywake"),
	)

	var body string
	if !m.haveData {
		body = lipgloss.JoinHorizontal(lipgloss.Center,
			m.spinner.View(),
			" ",
			t.Subtle.Render("waiting for the first audio event..."),
		)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderAudioLine(),
			m.renderInhibitLine(),
			"",
			t.Subtle.Render(fmt.Sprintf("%s %d decisions applied", styles.IconClock, m.applied)),
		)
	}

	box := t.Box.Render(lipgloss.JoinVertical(lipgloss.Left,
		t.BoxHeader.Render("Status"),
		body,
	))

	help := lipgloss.JoinHorizontal(lipgloss.Center,
		t.HelpKey.Render("[q]"),
		t.HelpDesc.Render(" quit"),
	)

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", box, "", help),
	)
}

func (m WatchModel) renderAudioLine() string {
	t := m.theme
	if m.current.Playing {
		return fmt.Sprintf("%s %s %s",
			t.SuccessStyle.Render(styles.IconPlay),
			t.Normal.Render("Audio"),
			t.Badge.Render("playing"),
		)
	}
	return fmt.Sprintf("%s %s %s",
		t.Subtle.Render(styles.IconMute),
		t.Normal.Render("Audio"),
		t.BadgeMuted.Render("silent"),
	)
}

func (m WatchModel) renderInhibitLine() string {
	t := m.theme
	since := time.Since(m.current.At).Round(time.Second)
	if m.current.Inhibited {
		return fmt.Sprintf("%s %s %s %s",
			t.WarningStyle.Render(styles.IconSun),
			t.Normal.Render("Screen"),
			t.Badge.Render("kept awake"),
			t.Subtle.Render(fmt.Sprintf("for %s", since)),
		)
	}
	return fmt.Sprintf("%s %s %s %s",
		t.Subtle.Render(styles.IconMoon),
		t.Normal.Render("Screen"),
		t.BadgeMuted.Render("may sleep"),
		t.Subtle.Render(fmt.Sprintf("for %s", since)),
	)
}
