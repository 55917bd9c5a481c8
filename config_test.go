package main_test

import (
	_ "embed"
	"strings"
	"testing"

	main "github.com/rjclark/zoneminder-slack-bot"
)

//go:embed example.toml
var exampleToml string

func eqcase[T comparable](t *testing.T, name string, val T, eq T) {
	t.Helper()
	if val != eq {
		t.Errorf("wrong %s: want %#v, got %#v", name, eq, val)
	}
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("SLACK_API_TOKEN", "xoxb-example")
	t.Setenv("ZM_PASSWORD", "hunter2")
	cfg, md, err := main.Load(strings.NewReader(exampleToml))
	if err != nil {
		t.Fatalf("failed to load example.toml: %v", err)
	}

	eqcase(t, "Slack.Token", cfg.Slack.Token, "xoxb-example")
	eqcase(t, "Slack.BotID", cfg.Slack.BotID, "U0ABCDEF1")
	eqcase(t, "Slack.BotName", cfg.Slack.BotName, "zonebot")
	eqcase(t, "Slack.Channels[0]", cfg.Slack.Channels[0], "#security")
	eqcase(t, "ZoneMinder.URL", cfg.ZoneMinder.URL, "https://zoneminder.example.com/zm/")
	eqcase(t, "ZoneMinder.Username", cfg.ZoneMinder.Username, "zonebot")
	eqcase(t, "ZoneMinder.Password", cfg.ZoneMinder.Password, "hunter2")
	eqcase(t, "Permissions[alice]", cfg.Permissions["alice"], "any")
	eqcase(t, "Permissions[bob]", cfg.Permissions["bob"], "read, write")
	eqcase(t, "Permissions[carol]", cfg.Permissions["carol"], "enable monitor")
	eqcase(t, "HTTP.Listen", cfg.HTTP.Listen, "localhost:4959")
	eqcase(t, "IsDefined(permissions)", md.IsDefined("permissions"), true)
	eqcase(t, "IsDefined(nonsense)", md.IsDefined("nonsense"), false)

	if err := cfg.Validate(); err != nil {
		t.Errorf("example config does not validate: %v", err)
	}
	eqcase(t, "normalized ZoneMinder.URL", cfg.ZoneMinder.URL, "https://zoneminder.example.com/zm")
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		toml string
		bad  string
	}{
		{
			name: "missing token",
			toml: "[slack]\nbot_id = 'U1'\nchannels = ['#a']\n[zoneminder]\nurl = 'http://zm/'\nusername = 'u'\npassword = 'p'\n",
			bad:  "api_token",
		},
		{
			name: "missing bot id",
			toml: "[slack]\napi_token = 'x'\nchannels = ['#a']\n[zoneminder]\nurl = 'http://zm/'\nusername = 'u'\npassword = 'p'\n",
			bad:  "bot_id",
		},
		{
			name: "missing channels",
			toml: "[slack]\napi_token = 'x'\nbot_id = 'U1'\n[zoneminder]\nurl = 'http://zm/'\nusername = 'u'\npassword = 'p'\n",
			bad:  "channels",
		},
		{
			name: "missing zoneminder url",
			toml: "[slack]\napi_token = 'x'\nbot_id = 'U1'\nchannels = ['#a']\n[zoneminder]\nusername = 'u'\npassword = 'p'\n",
			bad:  "zoneminder.url",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, _, err := main.Load(strings.NewReader(c.toml))
			if err != nil {
				t.Fatalf("couldn't decode: %v", err)
			}
			err = cfg.Validate()
			if err == nil {
				t.Fatal("no validation error")
			}
			if !strings.Contains(err.Error(), c.bad) {
				t.Errorf("error does not name %s: %v", c.bad, err)
			}
		})
	}
}
