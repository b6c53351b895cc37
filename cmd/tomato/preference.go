package main

import (
	"os"

	"github.com/jmylchreest/tomato/internal/dbus"
	"github.com/jmylchreest/tomato/internal/theme"
)

// themePreference resolves the configured color scheme. For "system" the
// desktop portal is asked first, then the terminal environment. The
// returned close func releases the bus connection.
func themePreference() (theme.PreferenceSource, func()) {
	scheme := cfg.Theme.Scheme()
	probes := []theme.Probe{theme.EnvProbe(os.Getenv)}
	closeFn := func() {}

	if scheme == theme.SchemeSystem {
		portal, err := dbus.NewPortal(logger)
		if err != nil {
			logger.Debug("desktop portal unavailable", "error", err)
		} else {
			probes = append([]theme.Probe{portal.Probe}, probes...)
			closeFn = func() { _ = portal.Close() }
		}
	}

	return theme.SchemePreference{
		Scheme: scheme,
		System: theme.SystemPreference{Probes: probes},
	}, closeFn
}
