package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/rjclark/zoneminder-slack-bot/command"
	"github.com/rjclark/zoneminder-slack-bot/metrics"
	"github.com/rjclark/zoneminder-slack-bot/slack"
	"github.com/rjclark/zoneminder-slack-bot/zoneminder"
)

var app = cli.Command{
	Name:  command.ProjectName,
	Usage: "Slack bot for monitoring and controlling a ZoneMinder system",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:  "alert",
			Usage: "Post a ZoneMinder event to the configured channels; invoked by a ZoneMinder event filter",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "event-dir",
					Usage:    "Event directory as passed by the filter's execute-command action",
					Required: true,
				},
			},
			Action: cliAlert,
		},
		{
			Name:   "get-id",
			Usage:  "Look up the bot's Slack user ID for the config file",
			Action: cliGetID,
		},
	},
	Action: cliRun,

	Authors: []any{
		command.Author + "  " + command.Contact,
	},
	Version: command.Version,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
	}
}

// loadConfig opens and decodes the config named by the persistent flag.
func loadConfig(cmd *cli.Command) (*Config, *toml.MetaData, error) {
	r, err := os.Open(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, md, err := Load(r)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, md, nil
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, md, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	zm, err := zoneminder.New(cfg.ZoneMinder.URL, cfg.ZoneMinder.Username, cfg.ZoneMinder.Password)
	if err != nil {
		return err
	}
	perms := command.Permissions{
		Defined: md.IsDefined("permissions"),
		Access:  lowerKeys(cfg.Permissions),
	}
	robo := New(cfg, perms, zm, newMetrics())
	return robo.Run(ctx)
}

func cliAlert(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	zm, err := zoneminder.New(cfg.ZoneMinder.URL, cfg.ZoneMinder.Username, cfg.ZoneMinder.Password)
	if err != nil {
		return err
	}
	chat := &slack.Client{
		HTTP:  &http.Client{Timeout: 30 * time.Second},
		Token: cfg.Slack.Token,
	}
	return alert(ctx, cfg, chat, zm, cmd.String("event-dir"))
}

func cliGetID(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Slack.Token == "" {
		return errors.New("slack.api_token is required")
	}
	if cfg.Slack.BotName == "" {
		return errors.New("slack.bot_name is required to look up the bot's ID")
	}
	chat := &slack.Client{
		HTTP:  &http.Client{Timeout: 30 * time.Second},
		Token: cfg.Slack.Token,
	}
	users, err := chat.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if strings.EqualFold(u.Name, cfg.Slack.BotName) {
			fmt.Printf("User ID for bot %q is %s\n", u.Name, u.ID)
			return nil
		}
	}
	return fmt.Errorf("no user named %q on this workspace", cfg.Slack.BotName)
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		EventCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zonebot",
					Subsystem: "rtm",
					Name:      "events",
					Help:      "Number of events received from the RTM firehose.",
				},
			),
		),
		CommandCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "zonebot",
					Subsystem: "commands",
					Name:      "dispatched",
					Help:      "Number of commands dispatched, by command name.",
				},
				[]string{"command"},
			),
		),
		CommandLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30},
					Namespace: "zonebot",
					Subsystem: "commands",
					Name:      "latency",
					Help:      "Seconds from resolving a command to sending its reply.",
				},
				[]string{"command"},
			),
		),
		SendErrors: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zonebot",
					Subsystem: "slack",
					Name:      "send_errors",
					Help:      "Number of failed sends back to Slack.",
				},
			),
		),
		RemoteErrors: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "zonebot",
					Subsystem: "zoneminder",
					Name:      "errors",
					Help:      "Number of failed calls to the ZoneMinder API.",
				},
			),
		),
	}
}
