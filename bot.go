package main

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rjclark/zoneminder-slack-bot/command"
	"github.com/rjclark/zoneminder-slack-bot/metrics"
	"github.com/rjclark/zoneminder-slack-bot/slack"
	"github.com/rjclark/zoneminder-slack-bot/zoneminder"
)

// heartbeatInterval is how often the bot pings the RTM connection. The ping
// runs on its own timer so that a slow command cannot starve it.
const heartbeatInterval = 60 * time.Second

// commandTimeout bounds one command's remote calls.
const commandTimeout = 2 * time.Minute

// replyTimeout bounds sending a command's reply. It is budgeted separately
// from commandTimeout so a command that spends its whole allowance on
// remote calls still gets its report out.
const replyTimeout = 30 * time.Second

// Robot is the bot's dispatch state.
type Robot struct {
	cfg   *Config
	perms command.Permissions
	chat  *slack.Client
	zm    command.Surveillance
	cache *command.Cache
	// send paces outbound Slack traffic; Slack's posting limit is roughly
	// one message per second with some burst allowance.
	send    *rate.Limiter
	metrics *metrics.Metrics
	timeout time.Duration
}

// New creates a Robot from loaded configuration.
func New(cfg *Config, perms command.Permissions, zm *zoneminder.Client, mx *metrics.Metrics) *Robot {
	return &Robot{
		cfg:   cfg,
		perms: perms,
		chat: &slack.Client{
			HTTP:  &http.Client{Timeout: 30 * time.Second},
			Token: cfg.Slack.Token,
		},
		zm:      meteredSurveillance{zm: zm, errs: mx.RemoteErrors},
		cache:   command.NewCache(),
		send:    rate.NewLimiter(rate.Every(time.Second), 5),
		metrics: mx,
		timeout: commandTimeout,
	}
}

// Run connects to Slack and dispatches commands until the context is
// cancelled. Lost RTM connections are redialed with increasing delays.
func (robo *Robot) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	if robo.cfg.HTTP.Listen != "" {
		group.Go(func() error {
			return robo.api(ctx, robo.cfg.HTTP.Listen, http.NewServeMux(), robo.metrics.Collectors())
		})
	}
	group.Go(func() error {
		return robo.chatLoop(ctx)
	})
	return group.Wait()
}

// redialDelays is the backoff schedule for reconnecting to RTM.
var redialDelays = []time.Duration{time.Second, 5 * time.Second, 15 * time.Second, time.Minute}

// chatLoop maintains the RTM session, redialing when it drops.
func (robo *Robot) chatLoop(ctx context.Context) error {
	attempt := 0
	for {
		sess, err := robo.chat.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay := redialDelays[min(attempt, len(redialDelays)-1)]
			attempt++
			slog.ErrorContext(ctx, "couldn't connect to Slack", slog.Any("err", err), slog.Duration("retry", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
		slog.InfoContext(ctx, "connected to Slack", slog.String("id", sess.ID()), slog.String("name", sess.Name()))
		err = robo.session(ctx, sess)
		sess.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.ErrorContext(ctx, "RTM session ended", slog.Any("err", err))
	}
}

// session reads one RTM connection until it fails, dispatching messages and
// keeping the connection alive.
func (robo *Robot) session(ctx context.Context, sess *slack.Session) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		t := time.NewTicker(heartbeatInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				if err := sess.Ping(ctx); err != nil {
					return err
				}
			}
		}
	})
	group.Go(func() error {
		for {
			ev, err := sess.Recv(ctx)
			if err != nil {
				return err
			}
			robo.metrics.EventCount.Observe(1)
			if ev.Type != "message" || ev.Subtype != "" {
				continue
			}
			text, ok := extractCommand(ev.Text, robo.cfg.Slack.BotID)
			if !ok {
				continue
			}
			// One message at a time, in order.
			robo.handle(ctx, ev.User, ev.Channel, text)
		}
	})
	return group.Wait()
}

// handle resolves and runs one mention.
func (robo *Robot) handle(ctx context.Context, user, channel, text string) {
	log := slog.With(slog.Any("trace", uuid.New()), slog.String("user", user), slog.String("channel", channel))
	words := tokenize(text)
	name := robo.cache.Resolve(ctx, robo.chat, user)
	cmd := command.Resolve(words, name, robo.perms)
	log.InfoContext(ctx, "dispatch", slog.String("command", cmd.Name()), slog.Any("words", words))
	robo.metrics.CommandCount.Observe(1, cmd.Name())
	start := time.Now()

	cctx, cancel := context.WithTimeout(ctx, robo.timeout)
	cmd.Perform(cctx, name, words, robo.zm)
	cancel()
	// The reply runs on its own deadline; a command that spends its whole
	// perform budget still answers.
	rctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	if err := robo.send.Wait(rctx); err != nil {
		robo.metrics.SendErrors.Observe(1)
		log.ErrorContext(ctx, "couldn't send reply", slog.String("command", cmd.Name()), slog.Any("err", err))
		return
	}
	if err := cmd.Report(rctx, robo.chat, user, channel); err != nil {
		robo.metrics.SendErrors.Observe(1)
		log.ErrorContext(ctx, "couldn't send reply", slog.String("command", cmd.Name()), slog.Any("err", err))
	}
	robo.metrics.CommandLatency.Observe(time.Since(start).Seconds(), cmd.Name())
	log.InfoContext(ctx, "done", slog.String("command", cmd.Name()))
}

// extractCommand strips a leading mention of the bot from message text and
// reports whether the message was addressed to the bot at all.
func extractCommand(text, botID string) (string, bool) {
	mention := "<@" + botID + ">"
	rest, ok := strings.CutPrefix(strings.TrimSpace(text), mention)
	if !ok {
		return "", false
	}
	rest = strings.TrimPrefix(strings.TrimSpace(rest), ":")
	return strings.TrimSpace(rest), true
}

// wordPattern splits message text into tokens. Splitting on runs of
// non-word characters strips the punctuation people address bots with.
var wordPattern = regexp.MustCompile(`\W+`)

// tokenize splits command text into words.
func tokenize(text string) []string {
	words := wordPattern.Split(text, -1)
	r := words[:0]
	for _, w := range words {
		if w != "" {
			r = append(r, w)
		}
	}
	return r
}

// meteredSurveillance counts failed ZoneMinder calls on the way through to
// the client.
type meteredSurveillance struct {
	zm   command.Surveillance
	errs metrics.Observer
}

func (s meteredSurveillance) Monitors(ctx context.Context) (zoneminder.MonitorList, error) {
	l, err := s.zm.Monitors(ctx)
	if err != nil {
		s.errs.Observe(1)
	}
	return l, err
}

func (s meteredSurveillance) SetState(ctx context.Context, m *zoneminder.Monitor, enabled bool) (string, error) {
	r, err := s.zm.SetState(ctx, m, enabled)
	if err != nil {
		s.errs.Observe(1)
	}
	return r, err
}

func (s meteredSurveillance) MonitorStill(ctx context.Context, m *zoneminder.Monitor) ([]byte, error) {
	b, err := s.zm.MonitorStill(ctx, m)
	if err != nil {
		s.errs.Observe(1)
	}
	return b, err
}

func (s meteredSurveillance) Status(ctx context.Context) (*zoneminder.Status, error) {
	st, err := s.zm.Status(ctx)
	if err != nil {
		s.errs.Observe(1)
	}
	return st, err
}

// lowerKeys normalizes the permissions table's user names for lookup.
func lowerKeys(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	r := make(map[string]string, len(m))
	for k, v := range m {
		r[strings.ToLower(k)] = v
	}
	return r
}
