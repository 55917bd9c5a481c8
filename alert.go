package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rjclark/zoneminder-slack-bot/slack"
	"github.com/rjclark/zoneminder-slack-bot/zoneminder"
)

// alert posts one recorded event to the configured channels. ZoneMinder
// event filters invoke the bot with the event's storage directory; the
// monitor name and start time come from the directory itself, and the rest
// of the metadata comes back out of the API.
func alert(ctx context.Context, cfg *Config, chat *slack.Client, zm *zoneminder.Client, eventDir string) error {
	monitor, timestamp, err := parseEventDir(eventDir)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "alerting", slog.String("monitor", monitor), slog.String("time", timestamp))
	monitors, err := zm.Monitors(ctx)
	if err != nil {
		return err
	}
	m := monitors.Find(monitor)
	if m == nil {
		return fmt.Errorf("no monitor named %s", monitor)
	}
	ev, err := zm.LoadEvent(ctx, m.ID, timestamp)
	if err != nil {
		return err
	}
	if ev.KeyFrame == "" {
		return fmt.Errorf("event %s has no scored frames", ev.ID)
	}
	image, err := zm.StillFrame(ctx, ev.KeyFrame)
	if err != nil {
		return err
	}
	comment := alertComment(zm.URL(), ev)
	link, err := chat.UploadFile(ctx, cfg.Slack.Channels, ev.Source+"_alert.jpeg", comment, image)
	if err != nil {
		return fmt.Errorf("couldn't post alert: %w", err)
	}
	slog.InfoContext(ctx, "alerted", slog.String("event", ev.ID), slog.String("link", link))
	return nil
}

// alertComment builds the text posted with an alert image, including a link
// back to the event in the ZoneMinder console.
func alertComment(baseURL string, ev *zoneminder.Event) string {
	c := fmt.Sprintf("Detected %s on monitor %s. %s/index.php?view=event&eid=%s",
		ev.Cause, ev.Source, baseURL, ev.ID)
	if ev.DiskSpace > 0 {
		c += " (" + zoneminder.HumanSize(ev.DiskSpace) + ")"
	}
	return c
}

// parseEventDir recovers the monitor name and event start time from an
// event storage directory. The last seven path elements are
// monitor/yy/mm/dd/hh/mm/ss; anything before them is the storage root and
// is ignored.
func parseEventDir(dir string) (monitor, timestamp string, err error) {
	parts := splitPath(dir)
	if len(parts) < 7 {
		return "", "", fmt.Errorf("event directory %q is too short; want .../monitor/yy/mm/dd/hh/mm/ss", dir)
	}
	parts = parts[len(parts)-7:]
	monitor = parts[0]
	for _, p := range parts[1:] {
		if len(p) != 2 || !digits(p) {
			return "", "", fmt.Errorf("event directory %q has no yy/mm/dd/hh/mm/ss tail", dir)
		}
	}
	timestamp = fmt.Sprintf("20%s-%s-%s %s:%s:%s", parts[1], parts[2], parts[3], parts[4], parts[5], parts[6])
	return monitor, timestamp, nil
}

// splitPath splits a path on slashes, dropping empty elements.
func splitPath(dir string) []string {
	parts := strings.Split(dir, "/")
	r := parts[:0]
	for _, p := range parts {
		if p != "" {
			r = append(r, p)
		}
	}
	return r
}

// digits reports whether s is entirely ASCII digits.
func digits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
