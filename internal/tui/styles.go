package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/tomato/internal/theme"
)

// Styles are the lipgloss styles for one theme.
type Styles struct {
	Theme theme.Name

	App        lipgloss.Style
	Clock      lipgloss.Style
	BreakClock lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	Stats      lipgloss.Style
	Status     lipgloss.Style
	Paused     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
}

// StyleSink turns themed variables into lipgloss styles. It is written by
// the theme controller and read by the model on every render.
type StyleSink struct {
	mu    sync.RWMutex
	vars  map[string]string
	theme theme.Name
}

// NewStyleSink creates an empty sink. Until the controller writes to it,
// Styles falls back to the light palette.
func NewStyleSink() *StyleSink {
	return &StyleSink{vars: make(map[string]string)}
}

// SetVariable implements theme.StyleSink.
func (s *StyleSink) SetVariable(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// SetAttribute implements theme.StyleSink.
func (s *StyleSink) SetAttribute(name, value string) {
	if name != theme.AttributeName {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme.Name(value)
}

// Color returns the terminal color for a themed key, e.g. theme.KeyAccent.
func (s *StyleSink) Color(key string) lipgloss.Color {
	s.mu.RLock()
	value, ok := s.vars[theme.VariableName(key)]
	s.mu.RUnlock()

	if !ok {
		light, _ := theme.Lookup(theme.Light)
		value, _ = light.Value(key)
	}
	return lipgloss.Color(firstHex(value))
}

// Styles builds the current style set.
func (s *StyleSink) Styles() Styles {
	s.mu.RLock()
	name := s.theme
	s.mu.RUnlock()
	if name == "" {
		name = theme.Light
	}

	bg := s.Color(theme.KeyContainerBg)
	text := s.Color(theme.KeyTextPrimary)
	muted := s.Color(theme.KeyTextSecondary)

	return Styles{
		Theme: name,
		App: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(s.Color(theme.KeyBorderColor)).
			BorderBackground(s.Color(theme.KeyBackground)).
			Padding(1, 4),
		Clock: lipgloss.NewStyle().
			Background(bg).
			Foreground(s.Color(theme.KeyAccent)).
			Bold(true),
		BreakClock: lipgloss.NewStyle().
			Background(bg).
			Foreground(s.Color(theme.KeyButtonPrimary)).
			Bold(true),
		Tab: lipgloss.NewStyle().
			Background(s.Color(theme.KeyButtonSecondary)).
			Foreground(muted).
			Padding(0, 2),
		ActiveTab: lipgloss.NewStyle().
			Background(s.Color(theme.KeyButtonPrimary)).
			Foreground(s.Color(theme.KeyTaskItemBg)).
			Bold(true).
			Padding(0, 2),
		Stats: lipgloss.NewStyle().
			Background(s.Color(theme.KeyStatsBg)).
			Foreground(text).
			Padding(0, 2),
		Status: lipgloss.NewStyle().
			Background(bg).
			Foreground(muted),
		Paused: lipgloss.NewStyle().
			Background(bg).
			Foreground(s.Color(theme.KeyButtonWarning)),
		Error: lipgloss.NewStyle().
			Background(bg).
			Foreground(s.Color(theme.KeyButtonDanger)),
		Help: lipgloss.NewStyle().
			Foreground(s.Color(theme.KeyScrollbarThumbHover)),
	}
}

// firstHex returns the first #rgb or #rrggbb literal in a CSS value, so
// gradients collapse to their first stop. Values without one map to "".
func firstHex(value string) string {
	i := strings.IndexByte(value, '#')
	if i < 0 {
		return ""
	}
	end := i + 1
	for end < len(value) && isHexDigit(value[end]) {
		end++
	}
	switch end - i - 1 {
	case 3, 6:
		return value[i:end]
	default:
		return ""
	}
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
