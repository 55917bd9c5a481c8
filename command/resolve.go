package command

import "strings"

// Resolve maps one tokenized message to the command that will answer it.
// It is total: empty input resolves to help, unrecognized input to a command
// that echoes it back, and disallowed input to a command that reports the
// denial. The caller always gets exactly one command to run.
func Resolve(words []string, user string, perms Permissions) Command {
	if len(words) == 0 {
		return &Help{perms: perms}
	}
	d, ok := lookup(words)
	if !ok {
		return &Unknown{text: strings.Join(words, " ")}
	}
	if !perms.Allow(user, d.name, d.level) {
		return &Denied{name: d.name}
	}
	return d.make(request{words: words, user: user, perms: perms})
}
