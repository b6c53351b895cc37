// Package theme switches between the light and dark palettes.
// A Controller writes the 17 themed variables of the active palette, plus a
// data-theme marker, to an injected StyleSink. Sinks include a CSS renderer
// for exporting stylesheets; the terminal UI provides its own lipgloss sink.
package theme
