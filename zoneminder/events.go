package zoneminder

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Event is the parsed metadata of a single recorded event.
type Event struct {
	// ID is the numeric event ID, as a string the way the API reports it.
	ID string
	// Source is the name of the monitor that recorded the event.
	Source string
	// Name is the event's name.
	Name string
	// Cause is what triggered the event, e.g. "Motion" or "Forced Web".
	Cause string
	// Duration is the event length in seconds.
	Duration string
	// KeyFrame is the frame ID of the highest-scoring frame, or empty if the
	// event has no scored frames.
	KeyFrame string
	// DiskSpace is the event's storage footprint in bytes, or zero when the
	// install doesn't report it.
	DiskSpace int64
}

// rawEvent is the wire shape of an event detail response.
type rawEvent struct {
	Event struct {
		Event struct {
			ID        string `json:"Id"`
			Name      string `json:"Name"`
			Cause     string `json:"Cause"`
			Length    string `json:"Length"`
			DiskSpace string `json:"DiskSpace"`
		} `json:"Event"`
		Monitor struct {
			Name string `json:"Name"`
		} `json:"Monitor"`
		Frame []struct {
			ID    string `json:"Id"`
			Score string `json:"Score"`
		} `json:"Frame"`
	} `json:"event"`
}

// LoadEvent finds the event recorded by the given monitor at the given
// start time ("yyyy-mm-dd hh:mm:ss") and returns its parsed metadata.
func (c *Client) LoadEvent(ctx context.Context, monitorID, timestamp string) (*Event, error) {
	var index struct {
		Events []struct {
			Event struct {
				ID string `json:"Id"`
			} `json:"Event"`
		} `json:"events"`
	}
	u := c.apiurl("events/index/MonitorId:" + url.PathEscape(monitorID) + "/StartTime%20=:" + url.PathEscape(timestamp) + ".json")
	if err := get(ctx, c, u, &index); err != nil {
		return nil, fmt.Errorf("couldn't query events for %s at %s: %w", monitorID, timestamp, err)
	}
	if len(index.Events) == 0 {
		return nil, fmt.Errorf("no event on monitor %s at %s", monitorID, timestamp)
	}
	// The query should match exactly one event; only the first matters.
	id := index.Events[0].Event.ID
	var raw rawEvent
	if err := get(ctx, c, c.apiurl("events/"+id+".json"), &raw); err != nil {
		return nil, fmt.Errorf("couldn't load event %s: %w", id, err)
	}
	return parseEvent(&raw), nil
}

// parseEvent reduces an event detail response to the fields the bot cares
// about, picking the highest-scoring frame as the key frame.
func parseEvent(raw *rawEvent) *Event {
	ev := &Event{
		ID:       raw.Event.Event.ID,
		Source:   raw.Event.Monitor.Name,
		Name:     raw.Event.Event.Name,
		Cause:    raw.Event.Event.Cause,
		Duration: raw.Event.Event.Length,
	}
	ev.DiskSpace, _ = strconv.ParseInt(raw.Event.Event.DiskSpace, 10, 64)
	best := 0
	for _, f := range raw.Event.Frame {
		score, err := strconv.Atoi(f.Score)
		if err != nil {
			continue
		}
		if score > best {
			best = score
			ev.KeyFrame = f.ID
		}
	}
	return ev
}

// StillFrame fetches the image for a recorded frame as JPEG bytes. The frame
// ID usually comes from Event.KeyFrame.
func (c *Client) StillFrame(ctx context.Context, frameID string) ([]byte, error) {
	u := c.url + "/index.php?view=image&fid=" + url.QueryEscape(frameID)
	b, err := c.raw(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch frame %s: %w", frameID, err)
	}
	return b, nil
}
