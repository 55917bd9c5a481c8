package zoneminder

import (
	"context"
	"fmt"
)

// Status is the overall state of a ZoneMinder install.
type Status struct {
	// Version is the ZoneMinder software version.
	Version string
	// APIVersion is the version of the HTTP API.
	APIVersion string
	// DaemonRunning reports whether the capture daemon is up.
	DaemonRunning bool
	// Load is the one, five, and fifteen minute load averages of the host.
	Load [3]float64
}

// Status queries the install's version, daemon state, and load average.
//
// Disk usage is deliberately not part of this query: the getDiskPercent API
// walks the whole event store and routinely exceeds any sane request
// timeout. Callers that can tolerate the wait may use DiskPercent.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	s := new(Status)
	var ver struct {
		Version    string `json:"version"`
		APIVersion string `json:"apiversion"`
	}
	if err := get(ctx, c, c.apiurl("host/getVersion.json"), &ver); err != nil {
		return nil, fmt.Errorf("couldn't get version: %w", err)
	}
	s.Version = ver.Version
	s.APIVersion = ver.APIVersion

	var daemon struct {
		Result int `json:"result"`
	}
	if err := get(ctx, c, c.apiurl("host/daemonCheck.json"), &daemon); err != nil {
		return nil, fmt.Errorf("couldn't check daemon: %w", err)
	}
	s.DaemonRunning = daemon.Result == 1

	var load struct {
		Load []float64 `json:"load"`
	}
	if err := get(ctx, c, c.apiurl("host/getLoad.json"), &load); err != nil {
		return nil, fmt.Errorf("couldn't get load: %w", err)
	}
	copy(s.Load[:], load.Load)
	return s, nil
}

// DiskUsage is per-monitor disk consumption as reported by getDiskPercent.
type DiskUsage struct {
	Name  string `json:"name"`
	Space string `json:"space"`
}

// DiskPercent queries per-monitor disk usage. This call can take minutes on
// installs with a large event store; give it a generous context deadline.
func (c *Client) DiskPercent(ctx context.Context) ([]DiskUsage, error) {
	var resp struct {
		Usage map[string]DiskUsage `json:"usage"`
	}
	if err := get(ctx, c, c.apiurl("host/getDiskPercent.json"), &resp); err != nil {
		return nil, fmt.Errorf("couldn't get disk usage: %w", err)
	}
	u := make([]DiskUsage, 0, len(resp.Usage))
	for name, d := range resp.Usage {
		if d.Name == "" {
			d.Name = name
		}
		u = append(u, d)
	}
	return u, nil
}
