package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tomato/internal/theme"
)

var themeOpts struct {
	full bool
}

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Print the theme as CSS custom properties",
	Long: `Print the themed variables as a CSS block.

Without an argument the theme is resolved the same way the TUI does it:
the [theme] color_scheme setting, then the desktop portal, then
TOMATO_COLOR_SCHEME and COLORFGBG.

With --full the base stylesheet that consumes the variables is appended.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(theme.Light), string(theme.Dark)},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)

	themeCmd.Flags().BoolVar(&themeOpts.full, "full", false,
		"Append the base stylesheet")
}

func runTheme(cmd *cobra.Command, args []string) error {
	sink := theme.NewCSSSink()

	if len(args) == 1 {
		name, err := theme.ParseName(args[0])
		if err != nil {
			return err
		}
		theme.NewController(sink, nil, logger).Apply(name)
	} else {
		pref, closePref := themePreference()
		defer closePref()
		theme.NewController(sink, pref, logger).Initialize()
	}

	css := sink.Render()
	if themeOpts.full {
		css = sink.Stylesheet()
	}

	_, err := fmt.Fprint(cmd.OutOrStdout(), css)
	return err
}
