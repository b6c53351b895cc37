package dbus

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	// NotificationsInterface is the notification interface name.
	NotificationsInterface = "org.freedesktop.Notifications"
	// NotificationsPath is the notification object path.
	NotificationsPath = "/org/freedesktop/Notifications"

	// PortalBusName is the desktop portal bus name.
	PortalBusName = "org.freedesktop.portal.Desktop"
	// PortalPath is the desktop portal object path.
	PortalPath = "/org/freedesktop/portal/desktop"
	// SettingsInterface is the portal settings interface.
	SettingsInterface = "org.freedesktop.portal.Settings"
)

// caller is the subset of dbus.BusObject the clients use.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyNormal:
		return "normal"
	case UrgencyCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Notification is an outgoing org.freedesktop.Notifications.Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Urgency       Urgency
	Category      string
	DesktopEntry  string
	SoundName     string
	SuppressSound bool
	Transient     bool
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Hints builds the hints dictionary. Empty string hints are omitted.
func (n Notification) Hints() map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(n.Urgency)),
	}
	if n.Category != "" {
		hints["category"] = dbus.MakeVariant(n.Category)
	}
	if n.DesktopEntry != "" {
		hints["desktop-entry"] = dbus.MakeVariant(n.DesktopEntry)
	}
	if n.SoundName != "" {
		hints["sound-name"] = dbus.MakeVariant(n.SoundName)
	}
	if n.SuppressSound {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	if n.Transient {
		hints["transient"] = dbus.MakeVariant(true)
	}
	return hints
}

// Args returns the Notify method arguments in wire order.
func (n Notification) Args() []any {
	return []any{
		n.AppName,
		n.ReplacesID,
		n.AppIcon,
		n.Summary,
		n.Body,
		[]string{},
		n.Hints(),
		n.ExpireTimeout,
	}
}

// ColorScheme is the org.freedesktop.appearance color-scheme value.
type ColorScheme uint32

const (
	ColorSchemeNoPreference ColorScheme = 0
	ColorSchemePreferDark   ColorScheme = 1
	ColorSchemePreferLight  ColorScheme = 2
)

// String returns the string representation of the color scheme.
func (c ColorScheme) String() string {
	switch c {
	case ColorSchemeNoPreference:
		return "no-preference"
	case ColorSchemePreferDark:
		return "prefer-dark"
	case ColorSchemePreferLight:
		return "prefer-light"
	default:
		return "unknown"
	}
}
