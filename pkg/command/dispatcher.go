package command

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/routerbot/routerbot/pkg/audit"
	"github.com/routerbot/routerbot/pkg/auth"
	"github.com/routerbot/routerbot/pkg/restconf"
	"github.com/routerbot/routerbot/pkg/util"
)

// Command outcomes reported to the Observer.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
	OutcomeDenied  = "denied"
	OutcomeUnknown = "unknown"
	OutcomePanic   = "panic"
)

// Deps are the collaborators of the dispatcher. Only Dial is required;
// a nil Inventory, Backups, Audit, Checker or Observer disables that feature.
type Deps struct {
	// DefaultEndpoint is used when a device command names no router.
	// A zero BaseURL means there is no default router.
	DefaultEndpoint restconf.DeviceEndpoint
	Dial            Dialer
	Inventory       Inventory
	Backups         Backups
	SSHPort         int
	Audit           audit.Logger
	Checker         *auth.Checker
	Observer        Observer
	// Timeout bounds each invocation; zero means no extra bound.
	Timeout time.Duration
}

// Dispatcher validates, authorizes, runs and audits invocations.
type Dispatcher struct {
	registry *Registry
	deps     Deps
	started  time.Time
}

// NewDispatcher creates a dispatcher over the standard command set.
func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{deps: deps, started: time.Now()}
	d.registry = d.standardCommands()
	return d
}

// Registry returns the commands the dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Execute runs one invocation. It always returns a reply; failures become
// error replies.
func (d *Dispatcher) Execute(ctx context.Context, inv Invocation) (reply *Reply) {
	start := time.Now()
	log := util.WithCommand(inv.Command, inv.Actor.String())
	outcome := OutcomeSuccess
	var req *Request
	recorded := false

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic: %v\n%s", r, debug.Stack())
			reply = Failure("Internal error", "The command failed unexpectedly.")
			outcome = OutcomePanic
			if req != nil && req.Command.Write && !recorded {
				d.record(req, fmt.Errorf("panic: %v", r), time.Since(start))
			}
		}
		if d.deps.Observer != nil {
			d.deps.Observer.ObserveCommand(inv.Command, outcome)
		}
		log.WithField("outcome", outcome).Debugf("completed in %s", time.Since(start).Round(time.Millisecond))
	}()

	cmd, ok := d.registry.Lookup(inv.Command)
	if !ok {
		outcome = OutcomeUnknown
		return Failure("Unknown command", fmt.Sprintf("There is no command named %q. Try help.", inv.Command))
	}
	if inv.Args == nil {
		inv.Args = Args{}
	}
	if err := validateArgs(cmd, inv.Args); err != nil {
		outcome = OutcomeInvalid
		return renderError(err)
	}

	if d.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.deps.Timeout)
		defer cancel()
	}

	req = &Request{Command: cmd, Args: inv.Args, Actor: inv.Actor}
	err := d.run(ctx, req)
	if err == nil {
		reply, err = cmd.Handler(ctx, req)
	}
	if cmd.Write {
		recorded = true
		d.record(req, err, time.Since(start))
	}
	if err != nil {
		outcome = outcomeFor(err)
		log.WithField("device", req.Router).Warnf("failed: %v", err)
		return renderError(err)
	}
	if reply == nil {
		reply = Success(cmd.Name, "Done.")
	}
	if cmd.Private {
		reply.Ephemeral = true
	}
	return reply
}

// run checks permission and resolves the router for device commands.
func (d *Dispatcher) run(ctx context.Context, req *Request) error {
	if d.deps.Checker != nil && req.Command.Permission != "" {
		pctx := auth.NewContext().WithResource(req.Command.Name)
		if router := req.Args.String(optRouter); router != "" {
			pctx.WithDevice(router)
		}
		if iface := req.Args.String(optName); iface != "" && req.Command.Device {
			pctx.WithInterface(iface)
		}
		if err := d.deps.Checker.Check(req.Actor.Subject(), req.Command.Permission, pctx); err != nil {
			return err
		}
	}
	if !req.Command.Device {
		return nil
	}
	return d.resolve(ctx, req)
}

// resolve picks the endpoint (inventory entry or default) and dials it.
func (d *Dispatcher) resolve(ctx context.Context, req *Request) error {
	name := req.Args.String(optRouter)
	switch {
	case name != "":
		if d.deps.Inventory == nil {
			return errInventoryDisabled
		}
		profile, err := d.deps.Inventory.Get(ctx, req.Actor.Guild(), name)
		if err != nil {
			return err
		}
		req.Router = profile.Name
		req.Endpoint = profile.Endpoint(d.deps.DefaultEndpoint)
	case d.deps.DefaultEndpoint.BaseURL != "":
		req.Endpoint = d.deps.DefaultEndpoint
		req.Router = req.Endpoint.Host()
	default:
		return util.NewNotConfiguredError("default router", "set ROUTER_HOST or pass router:<name>")
	}

	dev, err := d.deps.Dial(req.Endpoint)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", req.Router, err)
	}
	req.Device = dev
	return nil
}

func (d *Dispatcher) record(req *Request, err error, elapsed time.Duration) {
	if d.deps.Audit == nil {
		return
	}
	device := req.Router
	if device == "" {
		device = req.Args.String(optRouter)
	}
	event := audit.NewEvent(req.Actor.String(), device, req.Command.Name).
		WithUserID(req.Actor.UserID).
		WithGuild(req.Actor.Guild()).
		WithArgs(req.Args.Strings()).
		WithDuration(elapsed)
	if req.Command.Device {
		event.WithInterface(req.Args.String(optName))
	}
	if err != nil {
		event.WithError(err)
	} else {
		event.WithSuccess()
	}
	if logErr := d.deps.Audit.Log(event); logErr != nil {
		util.Warnf("audit log write failed: %v", logErr)
	}
}

var errInventoryDisabled = util.NewNotConfiguredError("router inventory", "set REDIS_ADDR")

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, util.ErrPermissionDenied):
		return OutcomeDenied
	case errors.Is(err, util.ErrValidationFailed):
		return OutcomeInvalid
	}
	return OutcomeError
}

// renderError turns an error into a user-facing reply.
func renderError(err error) *Reply {
	var re *restconf.Error
	if errors.As(err, &re) {
		return Failure(restconfTitle(re.Kind), err.Error())
	}
	switch {
	case errors.Is(err, util.ErrPermissionDenied):
		return Failure("Permission denied", err.Error())
	case errors.Is(err, util.ErrValidationFailed):
		return Failure("Invalid input", err.Error())
	case errors.Is(err, util.ErrNotConfigured):
		return Failure("Not configured", err.Error())
	case errors.Is(err, util.ErrNotFound):
		return Failure("Not found", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return Failure("Timed out", "The command did not finish in time.")
	}
	return Failure("Command failed", err.Error())
}

func restconfTitle(kind restconf.Kind) string {
	switch kind {
	case restconf.KindDeviceUnreachable:
		return "Router unreachable"
	case restconf.KindAuthFailure:
		return "Router authentication failed"
	case restconf.KindNotFound:
		return "Not found on router"
	case restconf.KindValidation:
		return "Router rejected the change"
	case restconf.KindMalformedResponse:
		return "Unexpected router response"
	}
	return "RESTCONF error"
}
