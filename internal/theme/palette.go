package theme

import (
	"fmt"
	"strings"
	"unicode"
)

// Name identifies a theme.
type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
)

// Names returns all built-in themes.
func Names() []Name {
	return []Name{Light, Dark}
}

// Opposite returns the other theme.
func (n Name) Opposite() Name {
	if n == Dark {
		return Light
	}
	return Dark
}

// ParseName converts user input into a theme Name.
func ParseName(s string) (Name, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	default:
		return "", fmt.Errorf("unknown theme %q, must be light or dark", s)
	}
}

// Variable keys. Every palette defines all of them.
const (
	KeyBackground          = "background"
	KeyContainerBg         = "containerBg"
	KeyTextPrimary         = "textPrimary"
	KeyTextSecondary       = "textSecondary"
	KeyButtonPrimary       = "buttonPrimary"
	KeyButtonSecondary     = "buttonSecondary"
	KeyButtonDanger        = "buttonDanger"
	KeyButtonWarning       = "buttonWarning"
	KeyAccent              = "accent"
	KeyStatsBg             = "statsBg"
	KeyTaskBg              = "taskBg"
	KeyTaskItemBg          = "taskItemBg"
	KeyBorderColor         = "borderColor"
	KeyScrollbarTrack      = "scrollbarTrack"
	KeyScrollbarThumb      = "scrollbarThumb"
	KeyScrollbarThumbHover = "scrollbarThumbHover"
	KeyBoxShadow           = "boxShadow"
)

// Keys returns the variable keys in application order.
func Keys() []string {
	return []string{
		KeyBackground,
		KeyContainerBg,
		KeyTextPrimary,
		KeyTextSecondary,
		KeyButtonPrimary,
		KeyButtonSecondary,
		KeyButtonDanger,
		KeyButtonWarning,
		KeyAccent,
		KeyStatsBg,
		KeyTaskBg,
		KeyTaskItemBg,
		KeyBorderColor,
		KeyScrollbarTrack,
		KeyScrollbarThumb,
		KeyScrollbarThumbHover,
		KeyBoxShadow,
	}
}

// VariableName converts a key such as "containerBg" into the custom
// property name "--container-bg".
func VariableName(key string) string {
	var b strings.Builder
	b.WriteString("--")
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Palette holds the color and visual values of one theme.
type Palette struct {
	Background          string
	ContainerBg         string
	TextPrimary         string
	TextSecondary       string
	ButtonPrimary       string
	ButtonSecondary     string
	ButtonDanger        string
	ButtonWarning       string
	Accent              string
	StatsBg             string
	TaskBg              string
	TaskItemBg          string
	BorderColor         string
	ScrollbarTrack      string
	ScrollbarThumb      string
	ScrollbarThumbHover string
	BoxShadow           string
}

// Variable is a single themed value ready to be written to a StyleSink.
type Variable struct {
	Key   string // palette key, e.g. "containerBg"
	Name  string // custom property name, e.g. "--container-bg"
	Value string
}

// Variables returns every value of the palette in Keys() order.
func (p Palette) Variables() []Variable {
	values := []string{
		p.Background,
		p.ContainerBg,
		p.TextPrimary,
		p.TextSecondary,
		p.ButtonPrimary,
		p.ButtonSecondary,
		p.ButtonDanger,
		p.ButtonWarning,
		p.Accent,
		p.StatsBg,
		p.TaskBg,
		p.TaskItemBg,
		p.BorderColor,
		p.ScrollbarTrack,
		p.ScrollbarThumb,
		p.ScrollbarThumbHover,
		p.BoxShadow,
	}

	keys := Keys()
	vars := make([]Variable, len(keys))
	for i, key := range keys {
		vars[i] = Variable{Key: key, Name: VariableName(key), Value: values[i]}
	}
	return vars
}

// Value returns the value stored under key.
func (p Palette) Value(key string) (string, bool) {
	for _, v := range p.Variables() {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

var table = map[Name]Palette{
	Light: {
		Background:          "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
		ContainerBg:         "#ffffff",
		TextPrimary:         "#333333",
		TextSecondary:       "#666666",
		ButtonPrimary:       "#4ecdc4",
		ButtonSecondary:     "#f0f0f0",
		ButtonDanger:        "#ef5350",
		ButtonWarning:       "#ffa726",
		Accent:              "#ff6b6b",
		StatsBg:             "#f8f9fa",
		TaskBg:              "#f8f9fa",
		TaskItemBg:          "#ffffff",
		BorderColor:         "#e0e0e0",
		ScrollbarTrack:      "#f1f1f1",
		ScrollbarThumb:      "#c1c1c1",
		ScrollbarThumbHover: "#a8a8a8",
		BoxShadow:           "0 20px 40px rgba(0, 0, 0, 0.1)",
	},
	Dark: {
		Background:          "linear-gradient(135deg, #1a1c2c 0%, #2d1f3d 100%)",
		ContainerBg:         "#2d2d2d",
		TextPrimary:         "#ffffff",
		TextSecondary:       "#cccccc",
		ButtonPrimary:       "#4ecdc4",
		ButtonSecondary:     "#404040",
		ButtonDanger:        "#ef5350",
		ButtonWarning:       "#ffa726",
		Accent:              "#ff6b6b",
		StatsBg:             "#363636",
		TaskBg:              "#363636",
		TaskItemBg:          "#2d2d2d",
		BorderColor:         "#404040",
		ScrollbarTrack:      "#2d2d2d",
		ScrollbarThumb:      "#505050",
		ScrollbarThumbHover: "#606060",
		BoxShadow:           "0 20px 40px rgba(0, 0, 0, 0.3)",
	},
}

// Lookup returns the palette for a theme.
func Lookup(name Name) (Palette, bool) {
	p, ok := table[name]
	return p, ok
}
