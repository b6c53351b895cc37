package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tomato/internal/history"
)

var statsOpts struct {
	format string
	since  string
	clear  bool
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize completed intervals",
	Long: `Summarize the intervals recorded in the history log.

Formats:
  text   Human readable summary (default)
  json   Machine readable JSON
  yaml   Machine readable YAML

Examples:
  tomato stats
  tomato stats --since 7d
  tomato stats --format json
  tomato stats --clear`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsOpts.format, "format", "f", "text",
		"Output format (text, json, yaml)")
	statsCmd.Flags().StringVar(&statsOpts.since, "since", "",
		"Only include intervals from the last duration (e.g. 24h, 7d)")
	statsCmd.Flags().BoolVar(&statsOpts.clear, "clear", false,
		"Erase the history log")
}

func runStats(cmd *cobra.Command, args []string) error {
	log, err := history.Open(historyPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = log.Close() }()

	if statsOpts.clear {
		if err := log.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", log.Path())
		return err
	}

	records, err := log.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	now := time.Now()
	if statsOpts.since != "" {
		d, err := parseSince(statsOpts.since)
		if err != nil {
			return err
		}
		records = filterSince(records, now.Add(-d))
	}

	return writeStats(cmd.OutOrStdout(), statsOpts.format, history.Summarize(records, now), now)
}

// statsReport is the serialized form of a summary.
type statsReport struct {
	Pomodoros        int    `json:"pomodoros" yaml:"pomodoros"`
	Today            int    `json:"today" yaml:"today"`
	ShortBreaks      int    `json:"short_breaks" yaml:"short_breaks"`
	LongBreaks       int    `json:"long_breaks" yaml:"long_breaks"`
	FocusSeconds     int64  `json:"focus_seconds" yaml:"focus_seconds"`
	BreakSeconds     int64  `json:"break_seconds" yaml:"break_seconds"`
	StreakDays       int    `json:"streak_days" yaml:"streak_days"`
	FirstCompletedAt string `json:"first_completed_at,omitempty" yaml:"first_completed_at,omitempty"`
	LastCompletedAt  string `json:"last_completed_at,omitempty" yaml:"last_completed_at,omitempty"`
}

func newStatsReport(s history.Summary) statsReport {
	r := statsReport{
		Pomodoros:    s.Pomodoros,
		Today:        s.Today,
		ShortBreaks:  s.ShortBreaks,
		LongBreaks:   s.LongBreaks,
		FocusSeconds: int64(s.FocusTime / time.Second),
		BreakSeconds: int64(s.BreakTime / time.Second),
		StreakDays:   s.StreakDays,
	}
	if !s.FirstCompleted.IsZero() {
		r.FirstCompletedAt = s.FirstCompleted.Format(time.RFC3339)
	}
	if !s.LastCompleted.IsZero() {
		r.LastCompletedAt = s.LastCompleted.Format(time.RFC3339)
	}
	return r
}

func writeStats(w io.Writer, format string, s history.Summary, now time.Time) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newStatsReport(s))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newStatsReport(s)); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeStatsText(w, s, now)
	default:
		return fmt.Errorf("unknown format %q: must be one of text, json, yaml", format)
	}
}

func writeStatsText(w io.Writer, s history.Summary, now time.Time) error {
	if s.LastCompleted.IsZero() {
		_, err := fmt.Fprintln(w, "No completed intervals yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Pomodoros", humanize.Comma(int64(s.Pomodoros))},
		{"Today", humanize.Comma(int64(s.Today))},
		{"Short breaks", humanize.Comma(int64(s.ShortBreaks))},
		{"Long breaks", humanize.Comma(int64(s.LongBreaks))},
		{"Focus time", formatHours(s.FocusTime)},
		{"Break time", formatHours(s.BreakTime)},
		{"Streak", streakText(s.StreakDays)},
		{"First", humanize.RelTime(s.FirstCompleted, now, "ago", "from now")},
		{"Last", humanize.RelTime(s.LastCompleted, now, "ago", "from now")},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// formatHours renders a duration as hours and minutes, e.g. "2h 05m".
func formatHours(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

func streakText(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// parseSince accepts Go durations plus a "d" suffix for days.
func parseSince(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		var n int
		if _, err := fmt.Sscanf(days, "%d", &n); err != nil || n < 0 {
			return 0, fmt.Errorf("invalid --since %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid --since %q: %w", s, err)
	}
	return d, nil
}

func filterSince(records []history.Record, cutoff time.Time) []history.Record {
	out := records[:0:0]
	for _, r := range records {
		if !r.Time().Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

