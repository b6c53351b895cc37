package theme

import (
	"strconv"
	"strings"
)

// StaticPreference is a fixed preference.
type StaticPreference bool

// PrefersDark implements PreferenceSource.
func (p StaticPreference) PrefersDark() bool {
	return bool(p)
}

// Probe reports a color-scheme preference. ok is false when the probe has
// no opinion, letting the next probe decide.
type Probe func() (dark bool, ok bool)

// SystemPreference asks each probe in turn and falls back to light.
type SystemPreference struct {
	Probes []Probe
}

// PrefersDark implements PreferenceSource.
func (s SystemPreference) PrefersDark() bool {
	for _, probe := range s.Probes {
		if probe == nil {
			continue
		}
		if dark, ok := probe(); ok {
			return dark
		}
	}
	return false
}

// Scheme is the configured color scheme.
type Scheme string

const (
	SchemeSystem Scheme = "system"
	SchemeLight  Scheme = "light"
	SchemeDark   Scheme = "dark"
)

// ValidSchemes returns all accepted scheme values.
func ValidSchemes() []Scheme {
	return []Scheme{SchemeSystem, SchemeLight, SchemeDark}
}

// SchemePreference honours an explicit light/dark setting and defers to
// System otherwise.
type SchemePreference struct {
	Scheme Scheme
	System PreferenceSource
}

// PrefersDark implements PreferenceSource.
func (p SchemePreference) PrefersDark() bool {
	switch p.Scheme {
	case SchemeLight:
		return false
	case SchemeDark:
		return true
	}
	if p.System == nil {
		return false
	}
	return p.System.PrefersDark()
}

// EnvProbe reads TOMATO_COLOR_SCHEME and falls back to the COLORFGBG
// convention ("fg;bg") used by rxvt, Konsole and others.
func EnvProbe(getenv func(string) string) Probe {
	return func() (bool, bool) {
		switch strings.ToLower(getenv("TOMATO_COLOR_SCHEME")) {
		case "dark":
			return true, true
		case "light":
			return false, true
		}

		fgbg := getenv("COLORFGBG")
		if fgbg == "" {
			return false, false
		}
		parts := strings.Split(fgbg, ";")
		bg, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			return false, false
		}
		// ANSI 0-6 and 8 are dark backgrounds.
		return bg < 7 || bg == 8, true
	}
}
