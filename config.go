package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the bot's TOML configuration.
type Config struct {
	// Slack configures the chat connection.
	Slack SlackCfg `toml:"slack"`
	// ZoneMinder configures the surveillance system connection.
	ZoneMinder ZoneMinderCfg `toml:"zoneminder"`
	// Permissions maps user display names to comma-separated access lists.
	// Each grant is "any", "read", "write", or a command name. When the
	// section is absent entirely, every user may run every command.
	Permissions map[string]string `toml:"permissions"`
	// HTTP configures the metrics and debugging server.
	HTTP HTTPCfg `toml:"http"`
}

// SlackCfg is the configuration for the Slack connection.
type SlackCfg struct {
	// Token is the bot's API token.
	Token string `toml:"api_token"`
	// BotID is the bot user's Slack ID, used to recognize mentions. The
	// get-id subcommand prints it.
	BotID string `toml:"bot_id"`
	// BotName is the bot user's display name.
	BotName string `toml:"bot_name"`
	// Channels are the channels alerts are posted to.
	Channels []string `toml:"channels"`
}

// ZoneMinderCfg is the configuration for the ZoneMinder connection.
type ZoneMinderCfg struct {
	// URL is the base URL of the install.
	URL string `toml:"url"`
	// Username and Password are the login credentials.
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// HTTPCfg is the configuration for the bot's ops HTTP server.
type HTTPCfg struct {
	// Listen is the address on which to serve metrics and pprof. Empty
	// disables the server.
	Listen string `toml:"listen"`
}

// Load loads the configuration from a TOML document.
func Load(r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	expandcfg(&cfg, os.Getenv)
	return &cfg, &md, nil
}

// expandcfg performs variable expansion on configuration fields that may
// reasonably come from the environment.
func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.Slack.Token,
		&cfg.Slack.BotID,
		&cfg.Slack.BotName,
		&cfg.ZoneMinder.URL,
		&cfg.ZoneMinder.Username,
		&cfg.ZoneMinder.Password,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
	for i, s := range cfg.Slack.Channels {
		cfg.Slack.Channels[i] = os.Expand(s, expand)
	}
}

// Validate checks the fields the bot proper needs and normalizes the
// ZoneMinder URL. The get-id subcommand skips it, since finding the bot ID
// is how one fills in the config in the first place.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Slack.Token == "" {
		errs = append(errs, errors.New("slack.api_token is required"))
	}
	if cfg.Slack.BotID == "" {
		errs = append(errs, errors.New("slack.bot_id is required; run the get-id subcommand to find it"))
	}
	if len(cfg.Slack.Channels) == 0 {
		errs = append(errs, errors.New("slack.channels is required"))
	}
	if cfg.ZoneMinder.URL == "" {
		errs = append(errs, errors.New("zoneminder.url is required"))
	}
	if cfg.ZoneMinder.Username == "" {
		errs = append(errs, errors.New("zoneminder.username is required"))
	}
	if cfg.ZoneMinder.Password == "" {
		errs = append(errs, errors.New("zoneminder.password is required"))
	}
	cfg.ZoneMinder.URL = strings.TrimRight(cfg.ZoneMinder.URL, "/")
	return errors.Join(errs...)
}
