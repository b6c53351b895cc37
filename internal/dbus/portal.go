package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	appearanceNamespace = "org.freedesktop.appearance"
	colorSchemeKey      = "color-scheme"

	// probeTimeout bounds a portal lookup during startup.
	probeTimeout = 500 * time.Millisecond
)

// Portal reads appearance settings from the XDG desktop portal.
type Portal struct {
	conn   *dbus.Conn
	obj    caller
	logger *slog.Logger
}

// NewPortal connects to the session bus.
func NewPortal(logger *slog.Logger) (*Portal, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	p := newPortal(conn.Object(PortalBusName, PortalPath), logger)
	p.conn = conn
	return p, nil
}

func newPortal(obj caller, logger *slog.Logger) *Portal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Portal{obj: obj, logger: logger}
}

// ColorScheme reads org.freedesktop.appearance color-scheme.
// ReadOne is tried first; portals older than version 2 only have Read,
// which wraps the value in an extra variant.
func (p *Portal) ColorScheme(ctx context.Context) (ColorScheme, error) {
	var v dbus.Variant
	err := p.obj.CallWithContext(ctx, SettingsInterface+".ReadOne", 0, appearanceNamespace, colorSchemeKey).Store(&v)
	if err != nil {
		p.logger.Debug("portal ReadOne failed, trying Read", "error", err)
		if err := p.obj.CallWithContext(ctx, SettingsInterface+".Read", 0, appearanceNamespace, colorSchemeKey).Store(&v); err != nil {
			return ColorSchemeNoPreference, fmt.Errorf("failed to read color-scheme: %w", err)
		}
	}

	value := v.Value()
	for {
		inner, ok := value.(dbus.Variant)
		if !ok {
			break
		}
		value = inner.Value()
	}

	scheme, ok := value.(uint32)
	if !ok {
		return ColorSchemeNoPreference, fmt.Errorf("unexpected color-scheme type %T", value)
	}
	return ColorScheme(scheme), nil
}

// PrefersDark reports whether the desktop asks for a dark theme. Any
// failure counts as no.
func (p *Portal) PrefersDark() bool {
	dark, _ := p.Probe()
	return dark
}

// Probe has the theme.Probe shape: ok is false when the portal is
// unavailable or reports no preference.
func (p *Portal) Probe() (dark bool, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	scheme, err := p.ColorScheme(ctx)
	if err != nil {
		p.logger.Debug("portal color-scheme unavailable", "error", err)
		return false, false
	}

	p.logger.Debug("portal color-scheme", "scheme", scheme)
	switch scheme {
	case ColorSchemePreferDark:
		return true, true
	case ColorSchemePreferLight:
		return false, true
	default:
		return false, false
	}
}

// Close closes the bus connection.
func (p *Portal) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
