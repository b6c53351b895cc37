// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/tomato/internal/theme"
	"github.com/jmylchreest/tomato/internal/timer"
)

// Engine is the part of the timer the UI drives.
type Engine interface {
	State() timer.State
	Toggle()
	Reset()
	SetMode(m timer.Mode)
}

// Themes is the part of the theme controller the UI drives.
type Themes interface {
	Toggle() theme.Name
	Current() theme.Name
}

// Options configures a Model.
type Options struct {
	Engine Engine
	// Events is an engine subscription. The model re-arms a read after each
	// event and stops listening when the channel closes.
	Events <-chan timer.Event
	Themes Themes
	Styles *StyleSink
	// LastCompleted seeds the "last pomodoro" footer from history.
	LastCompleted time.Time
	// Today seeds the number of pomodoros finished today.
	Today int
	// Now is the clock used for relative times. Defaults to time.Now.
	Now func() time.Time
}

// Model is the main TUI model.
type Model struct {
	engine Engine
	events <-chan timer.Event
	themes Themes
	sink   *StyleSink
	styles Styles
	now    func() time.Time

	state         timer.State
	lastCompleted time.Time
	today         int

	keys     KeyMap
	help     help.Model
	showHelp bool

	width  int
	height int
	ready  bool

	statusMsg string
	statusErr bool
}

// eventMsg carries one engine event into the update loop.
type eventMsg timer.Event

// eventsClosedMsg is sent once the engine subscription closes.
type eventsClosedMsg struct{}

// ConfigReloadedMsg tells the UI the configuration was reloaded from disk.
// Err is set when the new file was rejected.
type ConfigReloadedMsg struct {
	Err error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// New creates a new TUI model.
func New(opts Options) Model {
	if opts.Styles == nil {
		opts.Styles = NewStyleSink()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := Model{
		engine:        opts.Engine,
		events:        opts.Events,
		themes:        opts.Themes,
		sink:          opts.Styles,
		styles:        opts.Styles.Styles(),
		now:           opts.Now,
		lastCompleted: opts.LastCompleted,
		today:         opts.Today,
		keys:          DefaultKeyMap(),
		help:          help.New(),
	}
	if m.engine != nil {
		m.state = m.engine.State()
	}
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), tea.SetWindowTitle(m.title()))
}

// waitForEvent blocks on the engine subscription.
func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case eventMsg:
		ev := timer.Event(msg)
		m.state = ev.State
		cmds := []tea.Cmd{m.waitForEvent(), tea.SetWindowTitle(m.title())}
		if ev.Type == timer.EventCompleted {
			m.lastCompleted = ev.At
			if ev.Finished == timer.ModeWork {
				m.today++
			}
			text := ev.Finished.Label() + " finished"
			cmds = append(cmds, func() tea.Msg { return statusMsg{text: text} })
		}
		return m, tea.Batch(cmds...)

	case eventsClosedMsg:
		m.events = nil
		return m, nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Config rejected: " + msg.Err.Error(), isErr: true}
			}
		}
		if m.engine != nil {
			m.state = m.engine.State()
		}
		m.styles = m.sink.Styles()
		return m, func() tea.Msg {
			return statusMsg{text: "Config reloaded"}
		}

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		if m.themes == nil {
			return m, nil
		}
		name := m.themes.Toggle()
		m.styles = m.sink.Styles()
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Switched to %s theme", name)}
		}
	}

	if m.engine == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.engine.Toggle()
	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
	case key.Matches(msg, m.keys.Work):
		return m.selectMode(timer.ModeWork)
	case key.Matches(msg, m.keys.ShortBreak):
		return m.selectMode(timer.ModeShortBreak)
	case key.Matches(msg, m.keys.LongBreak):
		return m.selectMode(timer.ModeLongBreak)
	default:
		return m, nil
	}

	m.state = m.engine.State()
	return m, tea.SetWindowTitle(m.title())
}

func (m Model) selectMode(mode timer.Mode) (tea.Model, tea.Cmd) {
	if m.engine.State().Running {
		return m, func() tea.Msg {
			return statusMsg{text: "Pause the timer to switch modes", isErr: true}
		}
	}
	m.engine.SetMode(mode)
	m.state = m.engine.State()
	return m, tea.SetWindowTitle(m.title())
}

// title is the terminal window title.
func (m Model) title() string {
	return fmt.Sprintf("%s %s - tomato", m.state.Clock(), m.state.Mode.Label())
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	s := m.styles
	sections := []string{
		m.viewTabs(),
		"",
		m.viewClock(),
		"",
		m.viewState(),
		"",
		s.Stats.Render(m.viewStats()),
	}
	body := lipgloss.JoinVertical(lipgloss.Center, sections...)
	app := s.App.Render(body)

	footer := m.viewFooter()
	content := lipgloss.JoinVertical(lipgloss.Center, app, footer)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, len(timer.Modes()))
	for i, mode := range timer.Modes() {
		label := fmt.Sprintf("%d %s", i+1, mode.Label())
		style := m.styles.Tab
		if mode == m.state.Mode {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewClock() string {
	style := m.styles.Clock
	if m.state.Mode.IsBreak() {
		style = m.styles.BreakClock
	}
	return style.Render(bigText(m.state.Clock()))
}

func (m Model) viewState() string {
	switch {
	case m.state.Transitioning:
		return m.styles.Status.Render("Up next: " + m.state.NextMode.Label())
	case m.state.Running:
		return m.styles.Status.Render("Running")
	case m.state.TimeLeft < m.engineDuration():
		return m.styles.Paused.Render("Paused")
	default:
		return m.styles.Status.Render("Ready")
	}
}

func (m Model) engineDuration() time.Duration {
	type durationer interface{ Durations() timer.Durations }
	if d, ok := m.engine.(durationer); ok {
		return d.Durations().For(m.state.Mode)
	}
	return m.state.TimeLeft
}

func (m Model) viewStats() string {
	parts := []string{
		fmt.Sprintf("Pomodoros: %d", m.state.CompletedPomodoros),
		fmt.Sprintf("Today: %d", m.today),
	}
	if !m.lastCompleted.IsZero() {
		parts = append(parts, "Last: "+humanize.RelTime(m.lastCompleted, m.now(), "ago", "from now"))
	}
	return strings.Join(parts, "  ·  ")
}

func (m Model) viewFooter() string {
	if m.statusMsg != "" {
		if m.statusErr {
			return m.styles.Error.UnsetBackground().Render(m.statusMsg)
		}
		return m.styles.Help.Render(m.statusMsg)
	}
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// NewProgram wraps a model in an alt-screen program. Callers hold on to the
// program to Send ConfigReloadedMsg from other goroutines.
func NewProgram(opts Options, progOpts ...tea.ProgramOption) *tea.Program {
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)
	return tea.NewProgram(New(opts), progOpts...)
}
