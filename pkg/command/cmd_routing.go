package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/routerbot/routerbot/pkg/restconf"
	"github.com/routerbot/routerbot/pkg/util"
)

func describeRoute(r restconf.RouteEntry) string {
	var parts []string
	if r.NextHop != "" {
		parts = append(parts, "via "+r.NextHop)
	}
	if r.Interface != "" {
		parts = append(parts, "dev "+r.Interface)
	}
	if r.Protocol != "" {
		parts = append(parts, "proto "+r.Protocol)
	}
	parts = append(parts, fmt.Sprintf("metric %d", r.Metric))
	return strings.Join(parts, " · ")
}

func getRoutingTable(ctx context.Context, req *Request) (*Reply, error) {
	routes, err := req.Device.GetRoutingTable(ctx)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return Info("Routing Table", "The routing table is empty."), nil
	}
	reply := Success("Routing Table on "+req.Router, fmt.Sprintf("Found %d route(s).", len(routes)))
	for _, r := range routes {
		reply.AddField(r.Destination, describeRoute(r), false)
	}
	return reply.Truncated(len(routes)), nil
}

func getStaticRoutes(ctx context.Context, req *Request) (*Reply, error) {
	routes, err := req.Device.GetStaticRoutes(ctx)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return Info("Static Routes", "No static routes configured."), nil
	}
	reply := Success("Static Routes on "+req.Router, fmt.Sprintf("Found %d static route(s).", len(routes)))
	for _, r := range routes {
		reply.AddField(r.CIDR(), "Next hop: "+r.NextHop, false)
	}
	return reply.Truncated(len(routes)), nil
}

// routeArgs validates prefix and mask and returns the dotted-quad mask.
func routeArgs(req *Request) (string, string, error) {
	prefix := req.Args.String(optPrefix)
	if err := requireIPv4("prefix", prefix); err != nil {
		return "", "", err
	}
	mask, err := normalizeMask(req.Args.String(optMask))
	if err != nil {
		return "", "", err
	}
	return prefix, mask, nil
}

func addStaticRoute(ctx context.Context, req *Request) (*Reply, error) {
	prefix, mask, err := routeArgs(req)
	if err != nil {
		return nil, err
	}
	nextHop := req.Args.String(optNextHop)
	if err := requireIPv4("next hop", nextHop); err != nil {
		return nil, err
	}
	route := restconf.StaticRoute{Prefix: prefix, Mask: mask, NextHop: nextHop}
	if err := req.Device.AddStaticRoute(ctx, route); err != nil {
		return nil, err
	}
	return Success("Static route added", fmt.Sprintf("%s via %s.", route.CIDR(), nextHop)), nil
}

func deleteStaticRoute(ctx context.Context, req *Request) (*Reply, error) {
	prefix, mask, err := routeArgs(req)
	if err != nil {
		return nil, err
	}
	if err := req.Device.DeleteStaticRoute(ctx, prefix, mask); err != nil {
		return nil, err
	}
	return Success("Static route deleted", util.FormatPrefix(prefix, mask)+" removed."), nil
}
