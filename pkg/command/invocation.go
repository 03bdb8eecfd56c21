package command

import (
	"fmt"
	"strings"

	"github.com/routerbot/routerbot/pkg/auth"
	"github.com/routerbot/routerbot/pkg/inventory"
	"github.com/routerbot/routerbot/pkg/restconf"
)

// Actor is the chat user running a command.
type Actor struct {
	UserID   string
	Username string
	RoleIDs  []string
	GuildID  string
}

// Subject converts the actor for permission checks.
func (a Actor) Subject() auth.Subject {
	return auth.Subject{ID: a.UserID, Name: a.Username, Roles: a.RoleIDs}
}

// Guild returns the inventory scope of the actor.
func (a Actor) Guild() string {
	if a.GuildID == "" {
		return inventory.GlobalGuild
	}
	return a.GuildID
}

func (a Actor) String() string {
	if a.Username != "" {
		return a.Username
	}
	if a.UserID != "" {
		return a.UserID
	}
	return "unknown"
}

// Args holds option values: string, bool or int64.
type Args map[string]interface{}

// String returns a string option, trimmed; "" when absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return strings.TrimSpace(s)
}

// Bool returns a bool option and whether it was given.
func (a Args) Bool(name string) (bool, bool) {
	b, ok := a[name].(bool)
	return b, ok
}

// Int returns an integer option, or def when absent.
func (a Args) Int(name string, def int64) int64 {
	if n, ok := a[name].(int64); ok {
		return n
	}
	return def
}

// Strings renders args for audit records, omitting secret options.
func (a Args) Strings() map[string]string {
	if len(a) == 0 {
		return nil
	}
	out := make(map[string]string, len(a))
	for k, v := range a {
		if k == optPassword {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// Invocation is one request to run a command.
type Invocation struct {
	Command string
	Args    Args
	Actor   Actor
}

// Request is what a handler receives once the dispatcher has validated
// the invocation and resolved the target router.
type Request struct {
	Command *Command
	Args    Args
	Actor   Actor

	// Set for device commands.
	Router   string
	Endpoint restconf.DeviceEndpoint
	Device   Device
}
