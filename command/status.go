package command

import (
	"context"
	"fmt"

	"github.com/rjclark/zoneminder-slack-bot/zoneminder"
)

// Status reports the ZoneMinder install's version, daemon state, and load
// average. Disk usage is deliberately left out: the ZoneMinder API computes
// it by walking the whole event store, which routinely outlives any sane
// request timeout on large installs.
type Status struct {
	status *zoneminder.Status
	err    error
}

func (s *Status) Name() string { return "status" }

func (s *Status) Perform(ctx context.Context, user string, words []string, zm Surveillance) {
	s.status, s.err = zm.Status(ctx)
}

func (s *Status) Report(ctx context.Context, chat Transport, user, channel string) error {
	if s.err != nil {
		msg := fmt.Sprintf("*Error* Could not query the ZoneMinder status: %v", s.err)
		return chat.PostMessage(ctx, channel, msg)
	}
	running := "running"
	if !s.status.DaemonRunning {
		running = "*not* running"
	}
	msg := fmt.Sprintf("ZoneMinder %s (API v%s) is %s. Load average: %.2f %.2f %.2f",
		s.status.Version, s.status.APIVersion, running,
		s.status.Load[0], s.status.Load[1], s.status.Load[2])
	return chat.PostMessage(ctx, channel, msg)
}
