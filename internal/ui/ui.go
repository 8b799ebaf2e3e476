package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"lyricflow/internal/models"
	"lyricflow/internal/pipeline"
)

// Model represents the TUI application state. It renders the latest pipeline
// snapshot and forwards key presses (language cycling) to the controller.
type Model struct {
	controller *pipeline.Controller
	sub        <-chan models.Snapshot
	snap       models.Snapshot
	languages  []string
	langIdx    int
	width      int
	height     int
	help       help.Model
	keys       keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	language key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		language: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "language"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.language, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.language, k.quit}}
}

type snapshotMsg models.Snapshot

// NewModel creates a TUI model subscribed to the controller's snapshots.
// languages is the rotation for the language cycle key.
func NewModel(controller *pipeline.Controller, languages []string) *Model {
	m := &Model{
		controller: controller,
		sub:        controller.Subscribe(),
		snap:       controller.Snapshot(),
		languages:  languages,
		help:       help.New(),
		keys:       newKeyMap(),
	}
	for i, lang := range languages {
		if lang == m.snap.Language {
			m.langIdx = i
		}
	}
	return m
}

// Init starts the snapshot receive loop.
func (m *Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.language):
			if len(m.languages) > 0 {
				m.langIdx = (m.langIdx + 1) % len(m.languages)
				m.controller.SetTargetLanguage(m.languages[m.langIdx])
			}
			return m, nil
		}

	case snapshotMsg:
		m.snap = models.Snapshot(msg)
		return m, m.waitForSnapshot()
	}

	return m, nil
}

// waitForSnapshot blocks on the subscription channel and converts the next
// snapshot into a message.
func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-m.sub)
	}
}

// View renders the header, the lyric window around the current line, and the
// help footer.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderLyrics())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderHeader() string {
	snap := m.snap

	title := "lyricflow"
	if snap.Track != nil {
		title = fmt.Sprintf("%s — %s", snap.Track.Title, snap.Track.Artist)
	}

	var status string
	switch snap.Status {
	case models.StatusError:
		status = styles.err.Render(fmt.Sprintf("error: %s", snap.LastError))
	case models.StatusNoLyrics:
		status = styles.warn.Render("no synced lyrics for this track")
	case models.StatusPolling:
		status = styles.help.Render("waiting for playback...")
	case models.StatusFetching:
		status = styles.help.Render("fetching lyrics...")
	default:
		clock := fmt.Sprintf("%s / %s", formatClock(snap.PositionMS), formatClock(trackDuration(snap)))
		if !snap.Playing {
			clock += " (paused)"
		}
		status = styles.help.Render(fmt.Sprintf("%s  →%s", clock, snap.Language))
	}

	return fmt.Sprintf("%s\n%s", styles.title.Render(title), status)
}

func (m *Model) renderLyrics() string {
	snap := m.snap
	if len(snap.Lines) == 0 {
		return ""
	}

	window := m.height - 8
	if window < 3 {
		window = 3
	}
	// Each lyric line renders as original plus translation.
	window /= 2

	start := 0
	if snap.LineIndex >= 0 {
		start = snap.LineIndex - window/2
	}
	if start+window > len(snap.Lines) {
		start = len(snap.Lines) - window
	}
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(snap.Lines) {
		end = len(snap.Lines)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		line := snap.Lines[i]

		text := line.Text
		if text == "" {
			text = "♪"
		}
		if i == snap.LineIndex {
			b.WriteString(styles.current.Render("▶ " + text))
		} else {
			b.WriteString("  " + text)
		}
		b.WriteString("\n")

		b.WriteString("  " + m.renderTranslation(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderTranslation(line models.Line) string {
	switch line.Status {
	case models.TranslationDone:
		if line.Translated == line.Text {
			return ""
		}
		return styles.ok.Render(line.Translated)
	case models.TranslationFailed:
		return styles.warn.Render("(translation unavailable)")
	default:
		return styles.help.Render("…")
	}
}

func trackDuration(snap models.Snapshot) int {
	if snap.Track == nil {
		return 0
	}
	return snap.Track.DurationMS
}

func formatClock(ms int) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
