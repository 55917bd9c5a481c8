package zoneminder

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Monitor is a single video-capture unit attached to ZoneMinder. The API
// reports numeric fields as strings, so they stay strings here.
type Monitor struct {
	ID       string `json:"Id"`
	Name     string `json:"Name"`
	Function string `json:"Function"`
	Enabled  string `json:"Enabled"`
}

// IsEnabled reports whether alarms are enabled on the monitor.
func (m *Monitor) IsEnabled() bool {
	return m.Enabled == "1"
}

// MonitorList is the set of monitors loaded from an install.
type MonitorList []Monitor

// Find returns the monitor with the given name, matched case-insensitively,
// or nil if there is none.
func (l MonitorList) Find(name string) *Monitor {
	for i := range l {
		if strings.EqualFold(l[i].Name, name) {
			return &l[i]
		}
	}
	return nil
}

// Monitors loads the current list of monitors.
func (c *Client) Monitors(ctx context.Context) (MonitorList, error) {
	var resp struct {
		Monitors []struct {
			Monitor Monitor `json:"Monitor"`
		} `json:"monitors"`
	}
	if err := get(ctx, c, c.apiurl("monitors.json"), &resp); err != nil {
		return nil, fmt.Errorf("couldn't load monitors: %w", err)
	}
	l := make(MonitorList, len(resp.Monitors))
	for i, m := range resp.Monitors {
		l[i] = m.Monitor
	}
	return l, nil
}

// SetState enables or disables alarms on a monitor and returns a string
// describing the resulting state. The state is re-read from the install
// rather than assumed, so the result reflects what actually happened.
func (c *Client) SetState(ctx context.Context, m *Monitor, enabled bool) (string, error) {
	v := "0"
	if enabled {
		v = "1"
	}
	form := url.Values{"Monitor[Enabled]": {v}}
	var resp struct {
		Message string `json:"message"`
	}
	if err := post(ctx, c, c.apiurl("monitors/"+m.ID+".json"), form, &resp); err != nil {
		return "", fmt.Errorf("couldn't change monitor state: %w", err)
	}
	if resp.Message != "Saved" {
		return "not changed: " + resp.Message, nil
	}
	// Reload to report the post-change state.
	l, err := c.Monitors(ctx)
	if err != nil {
		return "", fmt.Errorf("couldn't reload monitors: %w", err)
	}
	after := l.Find(m.Name)
	if after == nil {
		return "no longer available", nil
	}
	if after.IsEnabled() {
		return "changed to enabled", nil
	}
	return "changed to disabled", nil
}

// MonitorStill fetches a single live frame from a monitor as JPEG bytes.
func (c *Client) MonitorStill(ctx context.Context, m *Monitor) ([]byte, error) {
	u := c.url + "/cgi-bin/nph-zms?mode=single&scale=100&monitor=" + url.QueryEscape(m.ID)
	b, err := c.raw(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch still from monitor %s: %w", m.Name, err)
	}
	return b, nil
}
