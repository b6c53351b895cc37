// Package dbus holds the session-bus clients tomato talks to: the XDG
// desktop portal for the color-scheme preference and
// org.freedesktop.Notifications for interval-completion notifications.
package dbus
