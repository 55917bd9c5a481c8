// Package command implements the bot's command dispatch and permission
// resolution core: the registry of chat commands, the resolver that turns
// tokenized user input into exactly one command, the permission evaluator,
// and the commands themselves.
package command

import (
	"context"

	"github.com/rjclark/zoneminder-slack-bot/slack"
	"github.com/rjclark/zoneminder-slack-bot/zoneminder"
)

// Transport is the chat service surface commands report through.
type Transport interface {
	// PostMessage sends a plain text message to a channel.
	PostMessage(ctx context.Context, channel, text string) error
	// PostAttachments sends a message composed of attachments to a channel.
	PostAttachments(ctx context.Context, channel string, as []slack.Attachment) error
	// UploadFile uploads file bytes to channels and returns a permalink.
	UploadFile(ctx context.Context, channels []string, filename, comment string, data []byte) (string, error)
	// UserInfo resolves a user ID to the user's profile.
	UserInfo(ctx context.Context, id string) (*slack.User, error)
}

// Surveillance is the video system surface commands perform against.
type Surveillance interface {
	// Monitors loads the current list of monitors.
	Monitors(ctx context.Context) (zoneminder.MonitorList, error)
	// SetState enables or disables alarms on a monitor and returns a string
	// describing the actual resulting state.
	SetState(ctx context.Context, m *zoneminder.Monitor, enabled bool) (string, error)
	// MonitorStill fetches a live frame from a monitor as image bytes.
	MonitorStill(ctx context.Context, m *zoneminder.Monitor) ([]byte, error)
	// Status queries the install's version, daemon state, and load average.
	Status(ctx context.Context) (*zoneminder.Status, error)
}

// Command is a single unit of work resolved from one chat message. A command
// lives for exactly one message: Perform gathers state, then Report sends
// exactly one reply.
type Command interface {
	// Name is the command's canonical registry name.
	Name() string
	// Perform executes the command's side effects or data gathering. It never
	// fails: expected failure modes (missing arguments, unknown monitors,
	// remote-call errors) are recorded as report state instead.
	Perform(ctx context.Context, user string, words []string, zm Surveillance)
	// Report formats and sends the command's result to the channel. user is
	// the opaque chat ID of the requester, for mentions. The returned error
	// is the transport's, for the dispatch loop to log.
	Report(ctx context.Context, chat Transport, user, channel string) error
}

// Metadata about the project, reported by the about command and the CLI.
const (
	ProjectName = "zonebot"
	Version     = "1.1.0"
	Author      = "Robert Clark"
	Contact     = "clark@exiter.com"
)
