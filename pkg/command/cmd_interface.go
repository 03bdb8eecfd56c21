package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/routerbot/routerbot/pkg/restconf"
	"github.com/routerbot/routerbot/pkg/util"
)

func interfaceArg(req *Request) string {
	return util.NormalizeInterfaceName(req.Args.String(optName))
}

func statusMark(i restconf.InterfaceConfig) string {
	if i.Enabled {
		return "🟢"
	}
	return "🔴"
}

func getInterfaces(ctx context.Context, req *Request) (*Reply, error) {
	ifaces, err := req.Device.GetInterfaces(ctx)
	if err != nil {
		return nil, err
	}
	if len(ifaces) == 0 {
		return Info("Interfaces", "No interfaces found on the device."), nil
	}

	reply := Success("Interfaces on "+req.Router, fmt.Sprintf("Found %d interface(s).", len(ifaces)))
	for _, i := range ifaces {
		lines := []string{"Type: " + i.Type, "State: " + i.AdminState()}
		if p := i.Prefix(); p != "" {
			lines = append(lines, "IPv4: "+p)
		}
		reply.AddField(statusMark(i)+" "+i.Name, strings.Join(lines, "\n"), true)
	}
	return reply.Truncated(len(ifaces)), nil
}

func getInterface(ctx context.Context, req *Request) (*Reply, error) {
	i, err := req.Device.GetInterface(ctx, interfaceArg(req))
	if err != nil {
		return nil, err
	}

	lines := []string{
		"**Status:** " + i.AdminState(),
		"**Type:** " + i.Type,
	}
	if i.Description != "" {
		lines = append(lines, "**Description:** "+i.Description)
	}
	reply := Info("Interface "+i.Name, strings.Join(lines, "\n"))
	if p := i.Prefix(); p != "" {
		reply.AddField("IPv4 Address", p, false)
	}
	return reply, nil
}

func setInterfaceDescription(ctx context.Context, req *Request) (*Reply, error) {
	name := interfaceArg(req)
	desc := req.Args.String(optDescription)
	if err := req.Device.SetInterfaceDescription(ctx, name, desc); err != nil {
		return nil, err
	}
	return Success("Description updated", fmt.Sprintf("%s description set to %q.", name, desc)), nil
}

func setInterfaceState(ctx context.Context, req *Request) (*Reply, error) {
	name := interfaceArg(req)
	enabled, _ := req.Args.Bool(optEnabled)
	if err := req.Device.SetInterfaceState(ctx, name, enabled); err != nil {
		return nil, err
	}
	state := "shut down"
	if enabled {
		state = "enabled"
	}
	return Success("Interface state updated", fmt.Sprintf("%s is now %s.", name, state)), nil
}

func setInterfaceIP(ctx context.Context, req *Request) (*Reply, error) {
	name := interfaceArg(req)
	ip := req.Args.String(optIP)
	if err := requireIPv4("address", ip); err != nil {
		return nil, err
	}
	mask, err := normalizeMask(req.Args.String(optMask))
	if err != nil {
		return nil, err
	}
	if err := req.Device.SetInterfaceIP(ctx, name, ip, mask); err != nil {
		return nil, err
	}
	return Success("Address updated", fmt.Sprintf("%s address set to %s.", name, util.FormatPrefix(ip, mask))), nil
}
