package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/routerbot/routerbot/pkg/audit"
	"github.com/routerbot/routerbot/pkg/util"
	"github.com/routerbot/routerbot/pkg/version"
)

const defaultAuditLimit = 10

func (d *Dispatcher) auditLog(ctx context.Context, req *Request) (*Reply, error) {
	if d.deps.Audit == nil {
		return nil, util.NewNotConfiguredError("audit log", "set AUDIT_LOG or AUDIT_DSN")
	}
	limit := req.Args.Int(optLimit, defaultAuditLimit)
	if limit < 1 || limit > MaxFields {
		return nil, util.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxFields))
	}

	events, err := d.deps.Audit.Query(audit.Filter{
		GuildID:     req.Actor.Guild(),
		NewestFirst: true,
		Limit:       int(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	if len(events) == 0 {
		return Info("Audit Log", "No audit events found."), nil
	}

	reply := Info("Audit Log", fmt.Sprintf("Last %d change(s), newest first.", len(events)))
	for _, e := range events {
		name := fmt.Sprintf("%s · %s", e.Timestamp.UTC().Format("2006-01-02 15:04:05"), e.Operation)
		reply.AddField(name, describeEvent(e), false)
	}
	return reply, nil
}

func describeEvent(e *audit.Event) string {
	status := "✅ ok"
	if !e.Success {
		status = "❌ " + e.Error
	}
	line := e.User
	if e.Device != "" {
		line += " on " + e.Device
	}
	if args := e.ArgsString(); args != "" {
		line += "\n" + args
	}
	return line + "\n" + status
}

func (d *Dispatcher) ping(ctx context.Context, req *Request) (*Reply, error) {
	reply := Success("Pong!", fmt.Sprintf("Up for %s.", time.Since(d.started).Round(time.Second)))
	reply.Footer = "routerbot " + version.Version
	return reply, nil
}

// help lists the commands the actor may run.
func (d *Dispatcher) help(ctx context.Context, req *Request) (*Reply, error) {
	subject := req.Actor.Subject()
	var lines []string
	for _, cmd := range d.registry.Commands() {
		if d.deps.Checker != nil && cmd.Permission != "" {
			if d.deps.Checker.Check(subject, cmd.Permission, nil) != nil {
				continue
			}
		}
		lines = append(lines, fmt.Sprintf("**%s**%s: %s", cmd.Name, usage(cmd), cmd.Description))
	}
	reply := Info("Commands", strings.Join(lines, "\n"))
	if d.deps.Checker.Enforcing() {
		perms := d.deps.Checker.ListPermissions(subject)
		names := make([]string, len(perms))
		for i, p := range perms {
			names[i] = string(p)
		}
		reply.AddField("Your permissions", strings.Join(names, ", "), false)
		reply.AddField("Your groups", strings.Join(d.deps.Checker.GroupsFor(subject), ", "), false)
	}
	reply.Footer = "Device commands accept router:<name> to target an inventory router."
	return reply, nil
}

func usage(cmd *Command) string {
	var b strings.Builder
	for _, o := range cmd.Options {
		if o.Name == optRouter {
			continue
		}
		if o.Required {
			fmt.Fprintf(&b, " <%s>", o.Name)
		} else {
			fmt.Fprintf(&b, " [%s]", o.Name)
		}
	}
	return b.String()
}
