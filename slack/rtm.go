package slack

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/go-json-experiment/json"
)

// Session is a Real Time Messaging websocket connection.
type Session struct {
	// conn is the actual connection.
	conn *websocket.Conn
	// id and name identify the bot user the session belongs to.
	id   string
	name string
	// seq numbers outgoing messages; the RTM protocol requires a unique
	// positive id per client message.
	seq atomic.Int64
}

// Event is a message received over RTM. Fields beyond Type are populated
// only for the event types that carry them.
type Event struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitzero"`
	User    string `json:"user,omitzero"`
	Channel string `json:"channel,omitzero"`
	Text    string `json:"text,omitzero"`
	ReplyTo int    `json:"reply_to,omitzero"`
}

// Dial starts an RTM session: it calls rtm.connect for a websocket URL and
// the bot's own identity, then dials the socket and waits for the hello
// event. If the HTTP client is nil, [http.DefaultClient] is used for the
// websocket dial as well.
func (c *Client) Dial(ctx context.Context) (*Session, error) {
	var resp struct {
		URL  string `json:"url"`
		Self struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"self"`
	}
	if err := apicall(ctx, c, "rtm.connect", url.Values{}, &resp); err != nil {
		return nil, fmt.Errorf("couldn't start RTM session: %w", err)
	}
	var opts *websocket.DialOptions
	if c.HTTP != nil {
		opts = &websocket.DialOptions{HTTPClient: c.HTTP}
	}
	slog.DebugContext(ctx, "dial RTM", slog.String("url", resp.URL))
	conn, hr, err := websocket.Dial(ctx, resp.URL, opts)
	if err != nil {
		if hr != nil {
			b := make([]byte, 1024)
			n, _ := hr.Body.Read(b)
			b = b[:n]
			return nil, fmt.Errorf("couldn't connect to RTM: %w (%s)", err, b)
		}
		return nil, fmt.Errorf("couldn't connect to RTM: %w", err)
	}

	// The first event is a hello.
	_, m, err := conn.Read(ctx)
	if err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("couldn't receive hello: %w", err)
	}
	var ev Event
	if err := json.Unmarshal(m, &ev); err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("couldn't decode hello: %w", err)
	}
	if ev.Type != "hello" {
		conn.CloseNow()
		return nil, fmt.Errorf("invalid hello event with type %q", ev.Type)
	}
	return &Session{conn: conn, id: resp.Self.ID, name: resp.Self.Name}, nil
}

// ID returns the bot user's ID for this session.
func (s *Session) ID() string {
	return s.id
}

// Name returns the bot user's name for this session.
func (s *Session) Name() string {
	return s.name
}

// Recv gets the next event from the firehose. Pong replies to our own pings
// and send acknowledgements are handled transparently.
//
// Note that the context becoming done during a call to Recv will cause the
// websocket connection to close as well.
func (s *Session) Recv(ctx context.Context) (*Event, error) {
	for {
		_, m, err := s.conn.Read(ctx)
		if err != nil {
			return nil, err
		}
		var ev Event
		if err := json.Unmarshal(m, &ev); err != nil {
			return nil, fmt.Errorf("couldn't decode event %q: %w", m, err)
		}
		switch {
		case ev.Type == "pong":
			slog.DebugContext(ctx, "RTM pong")
			continue
		case ev.Type == "" && ev.ReplyTo != 0:
			// Acknowledgement of a message we sent. Nothing to do.
			continue
		}
		return &ev, nil
	}
}

// Ping sends a client ping to keep the connection alive.
func (s *Session) Ping(ctx context.Context) error {
	v := struct {
		ID   int64  `json:"id"`
		Type string `json:"type"`
	}{
		ID:   s.seq.Add(1),
		Type: "ping",
	}
	b, err := json.Marshal(&v)
	if err != nil {
		return fmt.Errorf("couldn't encode ping: %w", err)
	}
	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.conn.Write(wctx, websocket.MessageText, b); err != nil {
		return fmt.Errorf("couldn't send ping: %w", err)
	}
	return nil
}

// Close ends the session.
func (s *Session) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "goodbye")
}
