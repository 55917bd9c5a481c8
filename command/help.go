package command

import (
	"context"
	"strings"
)

// Help lists the commands the requesting user is allowed to run. It is also
// the fallback for an empty mention.
type Help struct {
	perms Permissions
	text  string
}

func (h *Help) Name() string { return "help" }

func (h *Help) Perform(ctx context.Context, user string, words []string, zm Surveillance) {
	lines := listing(user, h.perms)
	if len(lines) == 0 {
		h.text = "You are not permitted to run any commands."
		return
	}
	h.text = "Supported commands:\n" + strings.Join(lines, "\n")
}

func (h *Help) Report(ctx context.Context, chat Transport, user, channel string) error {
	return chat.PostMessage(ctx, channel, h.text)
}
