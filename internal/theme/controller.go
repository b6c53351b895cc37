package theme

import (
	"log/slog"
	"sync"
)

// AttributeName is the marker attribute set to the active theme name.
const AttributeName = "data-theme"

// StyleSink receives themed variables. The controller is its only writer.
type StyleSink interface {
	SetVariable(name, value string)
	SetAttribute(name, value string)
}

// PreferenceSource reports whether the host prefers a dark color scheme.
// It is read once, when the controller is initialized.
type PreferenceSource interface {
	PrefersDark() bool
}

// Controller owns the active theme and pushes its variables to a sink.
type Controller struct {
	mu      sync.Mutex
	logger  *slog.Logger
	sink    StyleSink
	pref    PreferenceSource
	current Name
}

// NewController creates a controller writing to sink.
// A nil pref is treated as "prefers light".
func NewController(sink StyleSink, pref PreferenceSource, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if pref == nil {
		pref = StaticPreference(false)
	}
	return &Controller{
		logger:  logger,
		sink:    sink,
		pref:    pref,
		current: Light,
	}
}

// Initialize picks the starting theme from the preference source and
// applies it.
func (c *Controller) Initialize() Name {
	name := Light
	if c.pref.PrefersDark() {
		name = Dark
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(name)
	c.logger.Debug("theme initialized", "theme", name)
	return name
}

// Toggle switches between light and dark and applies the result.
func (c *Controller) Toggle() Name {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := c.current.Opposite()
	c.applyLocked(name)
	c.logger.Debug("theme toggled", "theme", name)
	return name
}

// Apply writes every variable of the named theme, then the marker attribute.
func (c *Controller) Apply(name Name) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(name)
}

// Current returns the active theme.
func (c *Controller) Current() Name {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) applyLocked(name Name) {
	palette, ok := Lookup(name)
	if !ok {
		// Names only come from the closed Light/Dark set.
		c.logger.Error("unknown theme, not applied", "theme", name)
		return
	}

	c.current = name
	if c.sink == nil {
		return
	}
	for _, v := range palette.Variables() {
		c.sink.SetVariable(v.Name, v.Value)
	}
	c.sink.SetAttribute(AttributeName, string(name))
}
