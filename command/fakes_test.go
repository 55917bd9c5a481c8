package command

import (
	"context"
	"errors"

	"github.com/rjclark/zoneminder-slack-bot/slack"
	"github.com/rjclark/zoneminder-slack-bot/zoneminder"
)

// chatspy records every outbound call a command makes.
type chatspy struct {
	messages    []string
	attachments [][]slack.Attachment
	uploads     []upload
	users       map[string]string
	userErr     error
	userCalls   int
}

type upload struct {
	channels []string
	filename string
	comment  string
	data     []byte
}

func (c *chatspy) PostMessage(ctx context.Context, channel, text string) error {
	c.messages = append(c.messages, text)
	return nil
}

func (c *chatspy) PostAttachments(ctx context.Context, channel string, as []slack.Attachment) error {
	c.attachments = append(c.attachments, as)
	return nil
}

func (c *chatspy) UploadFile(ctx context.Context, channels []string, filename, comment string, data []byte) (string, error) {
	c.uploads = append(c.uploads, upload{channels, filename, comment, data})
	return "https://example.com/permalink", nil
}

func (c *chatspy) UserInfo(ctx context.Context, id string) (*slack.User, error) {
	c.userCalls++
	if c.userErr != nil {
		return nil, c.userErr
	}
	name, ok := c.users[id]
	if !ok {
		return nil, errors.New("user_not_found")
	}
	return &slack.User{ID: id, Name: name}, nil
}

// zmspy is a canned surveillance backend recording state changes.
type zmspy struct {
	monitors    zoneminder.MonitorList
	monitorsErr error
	stateResult string
	stateErr    error
	stateCalls  []stateCall
	still       []byte
	stillErr    error
	status      *zoneminder.Status
	statusErr   error
}

type stateCall struct {
	monitor string
	enabled bool
}

func (z *zmspy) Monitors(ctx context.Context) (zoneminder.MonitorList, error) {
	return z.monitors, z.monitorsErr
}

func (z *zmspy) SetState(ctx context.Context, m *zoneminder.Monitor, enabled bool) (string, error) {
	z.stateCalls = append(z.stateCalls, stateCall{m.Name, enabled})
	return z.stateResult, z.stateErr
}

func (z *zmspy) MonitorStill(ctx context.Context, m *zoneminder.Monitor) ([]byte, error) {
	return z.still, z.stillErr
}

func (z *zmspy) Status(ctx context.Context) (*zoneminder.Status, error) {
	return z.status, z.statusErr
}
