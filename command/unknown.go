package command

import (
	"context"
	"fmt"
)

// Unknown answers input that matched no registered command. It echoes the
// input back so the user can see what the bot actually received.
type Unknown struct {
	text string
}

func (u *Unknown) Name() string { return "unknown" }

func (u *Unknown) Perform(ctx context.Context, user string, words []string, zm Surveillance) {}

func (u *Unknown) Report(ctx context.Context, chat Transport, user, channel string) error {
	msg := fmt.Sprintf("I'm sorry, I don't know the command `%s`. Try `help` for a list of commands.", u.text)
	return chat.PostMessage(ctx, channel, msg)
}

// Denied answers a recognized command the user lacks permission for.
type Denied struct {
	name string
}

func (d *Denied) Name() string { return "denied" }

func (d *Denied) Perform(ctx context.Context, user string, words []string, zm Surveillance) {}

func (d *Denied) Report(ctx context.Context, chat Transport, user, channel string) error {
	msg := fmt.Sprintf("I'm sorry <@%s>, you do not have permission to run `%s`.", user, d.name)
	if d.name == "" {
		msg = fmt.Sprintf("I'm sorry <@%s>, you do not have permission to run that.", user)
	}
	return chat.PostMessage(ctx, channel, msg)
}
