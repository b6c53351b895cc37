package theme

import (
	"embed"
)

// stylesheets contains the bundled base stylesheet that consumes the themed
// custom properties.
//
//go:embed stylesheets/*.css
var stylesheets embed.FS

// baseStylesheetPath is the stylesheet written after the variable block.
const baseStylesheetPath = "stylesheets/tomato.css"

// BaseStylesheet returns the bundled stylesheet.
func BaseStylesheet() string {
	data, err := stylesheets.ReadFile(baseStylesheetPath)
	if err != nil {
		return ""
	}
	return string(data)
}
