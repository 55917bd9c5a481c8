package command

import (
	"sort"
	"strings"
)

// Level is a permission tier a command requires and a user may hold. A
// user's configured access list may also contain literal command names as
// fine-grained grants; those never appear as a required level.
type Level string

const (
	// LevelAny marks commands anyone may run. No permission check happens.
	LevelAny Level = "any"
	// LevelRead marks commands that only observe the surveillance system.
	LevelRead Level = "read"
	// LevelWrite marks commands that change the surveillance system.
	LevelWrite Level = "write"
)

// request carries the resolution context a constructor may need.
type request struct {
	words []string
	user  string
	perms Permissions
}

// descriptor is one entry in the routing table.
type descriptor struct {
	// name is the canonical command name: one or two lower-case words.
	name string
	// level is the permission the command requires.
	level Level
	// help is the one-line description shown by the help command.
	help string
	// order positions the command in help listings.
	order int
	// meta marks control-flow commands that are hidden from help listings.
	meta bool
	// make constructs a fresh instance for one message.
	make func(r request) Command
}

// registry is the routing table. It is fixed at process start; nothing adds
// to it afterward.
var registry = map[string]*descriptor{
	"help": {
		name:  "help",
		level: LevelAny,
		meta:  true,
		make:  func(r request) Command { return &Help{perms: r.perms} },
	},
	"unknown": {
		name:  "unknown",
		level: LevelAny,
		meta:  true,
		make:  func(r request) Command { return &Unknown{text: strings.Join(r.words, " ")} },
	},
	"denied": {
		name:  "denied",
		level: LevelAny,
		meta:  true,
		make:  func(r request) Command { return &Denied{} },
	},
	"about": {
		name:  "about",
		level: LevelAny,
		help:  "Information about this bot",
		order: 1,
		make:  func(r request) Command { return &About{} },
	},
	"status": {
		name:  "status",
		level: LevelRead,
		help:  "Status of the ZoneMinder system",
		order: 2,
		make:  func(r request) Command { return &Status{} },
	},
	"list monitors": {
		name:  "list monitors",
		level: LevelRead,
		help:  "List all monitors and their current state",
		order: 3,
		make:  func(r request) Command { return &ListMonitors{} },
	},
	"enable monitor": {
		name:  "enable monitor",
		level: LevelWrite,
		help:  "Enable alarms on a monitor (supplied by name, not ID)",
		order: 4,
		make:  func(r request) Command { return &ToggleMonitor{name: "enable monitor", enable: true} },
	},
	"disable monitor": {
		name:  "disable monitor",
		level: LevelWrite,
		help:  "Disable alarms on a monitor (supplied by name, not ID)",
		order: 5,
		make:  func(r request) Command { return &ToggleMonitor{name: "disable monitor"} },
	},
	"get still": {
		name:  "get still",
		level: LevelRead,
		help:  "Get a still image from a monitor (supplied by name, not ID)",
		order: 6,
		make:  func(r request) Command { return &GetStillImage{} },
	},
}

// lookup finds the descriptor for tokenized input. The first token alone is
// tried first, then the first two tokens joined; command names longer than
// two words do not exist.
func lookup(words []string) (*descriptor, bool) {
	first := strings.ToLower(strings.TrimSpace(words[0]))
	if d, ok := registry[first]; ok {
		return d, true
	}
	if len(words) > 1 {
		second := strings.ToLower(strings.TrimSpace(words[1]))
		if d, ok := registry[first+" "+second]; ok {
			return d, true
		}
	}
	return nil, false
}

// listing returns help lines for the non-meta commands the user may run, in
// display order.
func listing(user string, perms Permissions) []string {
	ds := make([]*descriptor, 0, len(registry))
	for _, d := range registry {
		if d.meta {
			continue
		}
		if !perms.Allow(user, d.name, d.level) {
			continue
		}
		ds = append(ds, d)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].order < ds[j].order })
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = "*" + d.name + "*: " + d.help
	}
	return lines
}
