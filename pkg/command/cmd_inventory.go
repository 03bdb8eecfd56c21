package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/routerbot/routerbot/pkg/inventory"
	"github.com/routerbot/routerbot/pkg/monitor"
)

func (d *Dispatcher) addRouter(ctx context.Context, req *Request) (*Reply, error) {
	if d.deps.Inventory == nil {
		return nil, errInventoryDisabled
	}
	p := inventory.Profile{
		GuildID:     req.Actor.Guild(),
		Name:        req.Args.String(optName),
		Host:        req.Args.String(optHost),
		Username:    req.Args.String(optUsername),
		Password:    req.Args.String(optPassword),
		Description: req.Args.String(optDescription),
	}
	created, err := d.deps.Inventory.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	req.Router = p.Name

	title := "Router updated"
	if created {
		title = "Router added"
	}
	return Success(title, fmt.Sprintf("**%s** (%s) is registered. Use router:%s with device commands.", p.Name, p.Host, p.Name)), nil
}

func (d *Dispatcher) listRouters(ctx context.Context, req *Request) (*Reply, error) {
	if d.deps.Inventory == nil {
		return nil, errInventoryDisabled
	}
	profiles, err := d.deps.Inventory.List(ctx, req.Actor.Guild())
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return Info("Routers", "No routers are registered. Use add-router to add one."), nil
	}

	reply := Info("Routers", fmt.Sprintf("%d router(s) registered.", len(profiles)))
	for _, p := range profiles {
		reply.AddField(statusIcon(p.Status)+" "+p.Name, describeProfile(p), false)
	}
	return reply.Truncated(len(profiles)), nil
}

func (d *Dispatcher) removeRouter(ctx context.Context, req *Request) (*Reply, error) {
	if d.deps.Inventory == nil {
		return nil, errInventoryDisabled
	}
	name := req.Args.String(optName)
	req.Router = name
	existed, err := d.deps.Inventory.Delete(ctx, req.Actor.Guild(), name)
	if err != nil {
		return nil, err
	}
	if !existed {
		return Warning("Router not found", fmt.Sprintf("No router named **%s** is registered.", name)), nil
	}
	return Success("Router removed", fmt.Sprintf("**%s** was removed.", name)), nil
}

func statusIcon(status string) string {
	switch monitor.Status(status) {
	case monitor.StatusOnline:
		return "🟢"
	case monitor.StatusOffline, monitor.StatusError:
		return "🔴"
	case monitor.StatusAuthFailed, monitor.StatusInvalid:
		return "🟠"
	}
	return "⚪"
}

func describeProfile(p inventory.Profile) string {
	status := p.Status
	if status == "" {
		status = inventory.StatusUnknown
	}
	lines := []string{"Host: " + p.Host, "Status: " + status}
	if p.FailureReason != "" {
		lines = append(lines, "Reason: "+p.FailureReason)
	}
	if !p.LastChecked.IsZero() {
		lines = append(lines, "Checked: "+p.LastChecked.UTC().Format(time.RFC3339))
	}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	return strings.Join(lines, "\n")
}
