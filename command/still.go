package command

import (
	"context"
	"fmt"
	"strings"
)

// GetStillImage fetches a live frame from one monitor and uploads it to the
// channel as an image file.
type GetStillImage struct {
	monitor string
	image   []byte
	errText string
}

func (g *GetStillImage) Name() string { return "get still" }

func (g *GetStillImage) Perform(ctx context.Context, user string, words []string, zm Surveillance) {
	if len(words) < 3 {
		g.errText = "Usage: `get still <name>`"
		return
	}
	g.monitor = strings.Join(words[2:], " ")
	monitors, err := zm.Monitors(ctx)
	if err != nil {
		g.errText = fmt.Sprintf("Could not load the monitor list: %v", err)
		return
	}
	m := monitors.Find(g.monitor)
	if m == nil {
		g.errText = fmt.Sprintf("I could not find a monitor named `%s`. Try `list monitors`.", g.monitor)
		return
	}
	image, err := zm.MonitorStill(ctx, m)
	if err != nil {
		g.errText = fmt.Sprintf("Could not capture an image from monitor `%s`: %v", m.Name, err)
		return
	}
	g.monitor = m.Name
	g.image = image
}

func (g *GetStillImage) Report(ctx context.Context, chat Transport, user, channel string) error {
	if g.errText != "" {
		return chat.PostMessage(ctx, channel, "*Error* "+g.errText)
	}
	filename := g.monitor + "_still.jpeg"
	comment := fmt.Sprintf("Still image from monitor %s", g.monitor)
	_, err := chat.UploadFile(ctx, []string{channel}, filename, comment, g.image)
	return err
}
