package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/routerbot/routerbot/pkg/auth"
	"github.com/routerbot/routerbot/pkg/util"
)

// OptionType is the value type of a command option.
type OptionType int

const (
	OptionString OptionType = iota
	OptionBool
	OptionInt
)

func (t OptionType) String() string {
	switch t {
	case OptionBool:
		return "bool"
	case OptionInt:
		return "integer"
	}
	return "string"
}

// Option describes one command argument.
type Option struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
}

// Handler runs a command against a resolved request.
type Handler func(ctx context.Context, req *Request) (*Reply, error)

// Command is one entry of the registry.
type Command struct {
	Name        string
	Description string
	Options     []Option
	// Permission is checked before the handler runs. Empty means anyone.
	Permission auth.Permission
	// Write commands are audited.
	Write bool
	// Private commands are answered only to the caller.
	Private bool
	// Device commands get a connected router, the default one or the
	// inventory entry named by the "router" option.
	Device  bool
	Handler Handler
}

// Option returns the named option.
func (c *Command) Option(name string) (Option, bool) {
	for _, o := range c.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Registry holds commands in registration order.
type Registry struct {
	order  []*Command
	byName map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// Register adds cmd. Device commands gain an optional "router" option.
// Registering a duplicate name panics.
func (r *Registry) Register(cmd *Command) {
	if _, exists := r.byName[cmd.Name]; exists {
		panic(fmt.Sprintf("command %q registered twice", cmd.Name))
	}
	if cmd.Handler == nil {
		panic(fmt.Sprintf("command %q has no handler", cmd.Name))
	}
	if cmd.Device {
		if _, ok := cmd.Option(optRouter); !ok {
			cmd.Options = append(cmd.Options, Option{
				Name:        optRouter,
				Description: "Inventory router to use instead of the default",
			})
		}
	}
	r.order = append(r.order, cmd)
	r.byName[cmd.Name] = cmd
}

// Lookup returns the named command.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, len(r.order))
	copy(out, r.order)
	return out
}

// ParseArgs converts key=value pairs (CLI input) into typed Args for cmd.
func ParseArgs(cmd *Command, pairs []string) (Args, error) {
	args := Args{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, util.NewValidationError(fmt.Sprintf("argument %q must be key=value", pair))
		}
		opt, known := cmd.Option(key)
		if !known {
			return nil, util.NewValidationError(fmt.Sprintf("unknown option %q for %s", key, cmd.Name))
		}
		switch opt.Type {
		case OptionBool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, util.NewValidationError(fmt.Sprintf("option %s must be true or false", key))
			}
			args[key] = b
		case OptionInt:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, util.NewValidationError(fmt.Sprintf("option %s must be an integer", key))
			}
			args[key] = n
		default:
			args[key] = value
		}
	}
	return args, nil
}

// validateArgs checks presence and types of args against cmd's options.
func validateArgs(cmd *Command, args Args) error {
	v := &util.ValidationBuilder{}
	for name, value := range args {
		opt, ok := cmd.Option(name)
		if !ok {
			v.AddErrorf("unknown option %q", name)
			continue
		}
		switch opt.Type {
		case OptionBool:
			_, ok = value.(bool)
		case OptionInt:
			_, ok = value.(int64)
		default:
			_, ok = value.(string)
		}
		v.Add(ok, fmt.Sprintf("option %s must be a %s", name, opt.Type))
	}
	for _, opt := range cmd.Options {
		if !opt.Required {
			continue
		}
		value, ok := args[opt.Name]
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			ok = false
		}
		v.Add(ok, fmt.Sprintf("missing required option %s", opt.Name))
	}
	return v.Build()
}
