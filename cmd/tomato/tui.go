package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tomato/internal/audio"
	"github.com/jmylchreest/tomato/internal/config"
	"github.com/jmylchreest/tomato/internal/dbus"
	"github.com/jmylchreest/tomato/internal/history"
	"github.com/jmylchreest/tomato/internal/theme"
	"github.com/jmylchreest/tomato/internal/timer"
	"github.com/jmylchreest/tomato/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive timer",
	Long: `Launch the interactive terminal timer.

The timer starts in work mode with a full interval and no completed
pomodoros. When an interval reaches zero an alert plays and, after a short
delay, the next mode is selected: a long break after every fourth pomodoro,
a short break otherwise, and work after any break.

Logs are written to ~/.local/state/tomato/tomato.log while the TUI runs.

--mode selects the first interval: work, short_break or long_break (the
short aliases short and long are accepted too).

Key bindings:
  space       Start/pause
  r           Reset the current interval
  1/2/3       Work / short break / long break (while paused)
  t           Toggle light/dark theme
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

var tuiOpts struct {
	mode string
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&tuiOpts.mode, "mode", "",
			"Initial mode: work, short_break or long_break")
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	startMode := timer.ModeWork
	if tuiOpts.mode != "" {
		m, err := timer.ParseMode(tuiOpts.mode)
		if err != nil {
			return err
		}
		startMode = m
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := openLogFile()
	if err != nil {
		setupLogger(io.Discard)
	} else {
		defer func() { _ = logFile.Close() }()
		setupLogger(logFile)
	}
	logger.Info("starting tomato", "version", version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// History
	var appender historyAppender
	var summary history.Summary
	if historyLog, err := history.Open(historyPath(), logger); err != nil {
		logger.Warn("history disabled", "error", err)
	} else {
		appender = historyLog
		defer func() { _ = historyLog.Close() }()
		if records, err := historyLog.Load(); err != nil {
			logger.Warn("failed to load history", "error", err)
		} else {
			summary = history.Summarize(records, time.Now())
		}
	}

	// The renderer and the bell share one serialised writer.
	out := newTerminalOutput(os.Stdout)

	// Audio
	player := audio.NewPlayer(logger)
	defer player.Close()
	alert := audio.NewNotifier(cfg.Audio, player, out, logger)
	if err := alert.Start(ctx); err != nil {
		logger.Warn("failed to start sound watcher", "error", err)
	}
	defer alert.Stop()

	// Timer
	engine := timer.New(timer.Options{
		Durations:       cfg.Timer.Durations(),
		LongBreakEvery:  cfg.Timer.LongBreakEvery,
		TransitionDelay: cfg.Timer.TransitionDelay.Duration(),
		Alert:           alert,
		Logger:          logger,
	})
	engine.SetMode(startMode)

	// Theme
	styles := tui.NewStyleSink()
	pref, closePref := themePreference()
	themes := theme.NewController(styles, pref, logger)
	themes.Initialize()
	closePref()

	// Completion side effects
	var desktop *dbus.Notifier
	hook := newCompletionHook(cfg, appender, func() (desktopNotifier, error) {
		n, err := dbus.NewNotifier("tomato", logger)
		if err != nil {
			return nil, err
		}
		desktop = n
		return n, nil
	}, logger)

	var wg sync.WaitGroup
	hookEvents := engine.Subscribe(64)
	wg.Add(1)
	go func() {
		defer wg.Done()
		hook.run(hookEvents)
	}()

	program := tui.NewProgram(tui.Options{
		Engine:        engine,
		Events:        engine.Subscribe(256),
		Themes:        themes,
		Styles:        styles,
		LastCompleted: summary.LastCompleted,
		Today:         summary.Today,
	}, tea.WithContext(ctx), tea.WithOutput(out))

	// Config hot reload
	watcher, err := config.NewWatcher(configPath(), func(c *config.Config) {
		engine.Configure(c.Timer.Durations(), c.Timer.LongBreakEvery, c.Timer.TransitionDelay.Duration())
		alert.UpdateConfig(c.Audio)
		hook.configure(c)
		program.Send(tui.ConfigReloadedMsg{})
	}, logger)
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		watcher.SetErrorHandler(func(err error) {
			program.Send(tui.ConfigReloadedMsg{Err: err})
		})
		if err := watcher.Start(); err != nil {
			logger.Debug("not watching config", "error", err)
		}
		defer func() { _ = watcher.Stop() }()
	}

	_, runErr := program.Run()

	engine.Close()
	wg.Wait()
	if desktop != nil {
		_ = desktop.Close()
	}

	if runErr != nil {
		return fmt.Errorf("tui: %w", runErr)
	}
	return nil
}

func openLogFile() (*os.File, error) {
	path := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}
