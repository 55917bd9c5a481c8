package command

import (
	"context"
	"fmt"
)

// About reports static project information.
type About struct{}

func (a *About) Name() string { return "about" }

func (a *About) Perform(ctx context.Context, user string, words []string, zm Surveillance) {}

func (a *About) Report(ctx context.Context, chat Transport, user, channel string) error {
	msg := fmt.Sprintf("%s version %s. A Slack bot for monitoring and controlling a ZoneMinder system.\nWritten by %s (%s).",
		ProjectName, Version, Author, Contact)
	return chat.PostMessage(ctx, channel, msg)
}
