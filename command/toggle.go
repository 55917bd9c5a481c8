package command

import (
	"context"
	"fmt"
	"strings"
)

// ToggleMonitor enables or disables alarms on one monitor named in the
// message. The reply carries the state the remote actually ended up in,
// re-queried after the change rather than assumed.
type ToggleMonitor struct {
	name   string
	enable bool

	monitor string
	result  string
	errText string
}

func (t *ToggleMonitor) Name() string { return t.name }

func (t *ToggleMonitor) Perform(ctx context.Context, user string, words []string, zm Surveillance) {
	if len(words) < 3 {
		t.errText = fmt.Sprintf("Usage: `%s <name>`", t.name)
		return
	}
	t.monitor = strings.Join(words[2:], " ")
	monitors, err := zm.Monitors(ctx)
	if err != nil {
		t.errText = fmt.Sprintf("Could not load the monitor list: %v", err)
		return
	}
	m := monitors.Find(t.monitor)
	if m == nil {
		t.errText = fmt.Sprintf("I could not find a monitor named `%s`. Try `list monitors`.", t.monitor)
		return
	}
	result, err := zm.SetState(ctx, m, t.enable)
	if err != nil {
		t.errText = fmt.Sprintf("Could not change the state of monitor `%s`: %v", m.Name, err)
		return
	}
	t.monitor = m.Name
	t.result = result
}

func (t *ToggleMonitor) Report(ctx context.Context, chat Transport, user, channel string) error {
	if t.errText != "" {
		return chat.PostMessage(ctx, channel, "*Error* "+t.errText)
	}
	msg := fmt.Sprintf("Monitor %s %s", t.monitor, t.result)
	return chat.PostMessage(ctx, channel, msg)
}
