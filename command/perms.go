package command

import "strings"

// Permissions is the configuration-supplied access table. The zero value
// behaves like a config with no permissions section at all: everything is
// allowed.
type Permissions struct {
	// Defined reports whether the configuration has a permissions section.
	// When it does not, every user may run every command; locking the bot
	// down is opt-in.
	Defined bool
	// Access maps lower-cased user display names to comma-separated grant
	// lists. Each grant is "any", "read", "write", or a literal command name.
	Access map[string]string
}

// Allow decides whether the named user may run the command. user is the
// resolved display name; an empty string means resolution failed, which
// denies everything beyond the no-check tier.
func (p Permissions) Allow(user, command string, level Level) bool {
	if level == LevelAny {
		return true
	}
	if !p.Defined {
		return true
	}
	if user == "" {
		return false
	}
	access, ok := p.Access[strings.ToLower(user)]
	if !ok {
		// Users without an entry get read access only.
		access = string(LevelRead)
	}
	for _, grant := range strings.Split(access, ",") {
		switch strings.ToLower(strings.TrimSpace(grant)) {
		case string(LevelAny), string(level), command:
			return true
		}
	}
	return false
}
