package command

import (
	"context"
	"fmt"

	"github.com/rjclark/zoneminder-slack-bot/slack"
	"github.com/rjclark/zoneminder-slack-bot/zoneminder"
)

const (
	colorEnabled  = "#2fa44f"
	colorDisabled = "#d52000"
)

// ListMonitors reports every monitor as a colored attachment: green when
// alarms are enabled, red when they are not.
type ListMonitors struct {
	monitors zoneminder.MonitorList
	err      error
}

func (l *ListMonitors) Name() string { return "list monitors" }

func (l *ListMonitors) Perform(ctx context.Context, user string, words []string, zm Surveillance) {
	l.monitors, l.err = zm.Monitors(ctx)
}

func (l *ListMonitors) Report(ctx context.Context, chat Transport, user, channel string) error {
	if l.err != nil {
		msg := fmt.Sprintf("*Error* Could not load the monitor list: %v", l.err)
		return chat.PostMessage(ctx, channel, msg)
	}
	if len(l.monitors) == 0 {
		return chat.PostMessage(ctx, channel, "There are no monitors defined.")
	}
	as := make([]slack.Attachment, len(l.monitors))
	for i, m := range l.monitors {
		color, enabled := colorDisabled, "No"
		if m.IsEnabled() {
			color, enabled = colorEnabled, "Yes"
		}
		as[i] = slack.Attachment{
			Text:  fmt.Sprintf("%s (ID: %s)", m.Name, m.ID),
			Color: color,
			Fields: []slack.Field{
				{Title: "Enabled", Value: enabled, Short: true},
				{Title: "Detection", Value: m.Function, Short: true},
			},
		}
	}
	return chat.PostAttachments(ctx, channel, as)
}
