package restconf

import (
	"context"
	"net/http"
	"net/url"
)

const (
	routingStateResource = "ietf-routing:routing-state"
	staticRoutesResource = nativeResource + "/ip/route"
	staticRouteList      = "ip-route-interface-forwarding-list"
)

// GetRoutingTable reads the operational RIBs and flattens every route, rib
// by rib, in the order the device reports them.
func (c *Client) GetRoutingTable(ctx context.Context) ([]RouteEntry, error) {
	tree, err := c.getData(ctx, routingStateResource)
	if err != nil {
		return nil, err
	}
	state, ok := lookup(tree, routingStateResource)
	if !ok {
		if tree == nil {
			return []RouteEntry{}, nil
		}
		return nil, malformed("GET "+routingStateResource, "response has no routing-state container")
	}

	// Pre-NMDA servers nest ribs under routing-instance entries.
	var ribContainers []interface{}
	if instances, ok := lookup(state, "routing-instance"); ok {
		for _, inst := range asList(instances) {
			if ribs, ok := lookup(inst, "ribs"); ok {
				ribContainers = append(ribContainers, ribs)
			}
		}
	} else if ribs, ok := lookup(state, "ribs"); ok {
		ribContainers = append(ribContainers, ribs)
	}

	routes := []RouteEntry{}
	for _, ribs := range ribContainers {
		rib, _ := lookup(ribs, "rib")
		for _, r := range asList(rib) {
			list, _ := lookupPath(r, "routes", "route")
			for _, route := range asList(list) {
				routes = append(routes, parseRoute(route))
			}
		}
	}
	return routes, nil
}

func parseRoute(route interface{}) RouteEntry {
	entry := RouteEntry{
		Destination: field(route, "destination-prefix"),
		Protocol:    localName(field(route, "source-protocol")),
	}
	if m, ok := lookup(route, "metric"); ok {
		entry.Metric = asUint32(m)
	} else if p, ok := lookup(route, "route-preference"); ok {
		entry.Metric = asUint32(p)
	}
	if nh, ok := lookup(route, "next-hop"); ok {
		entry.Interface = field(nh, "outgoing-interface")
		entry.NextHop = field(nh, "next-hop-address")
		if entry.NextHop == "" {
			entry.NextHop = field(nh, "address")
		}
	}
	return entry
}

func staticRouteResource(prefix, mask string) string {
	return staticRoutesResource + "/" + staticRouteList + "=" + url.PathEscape(prefix) + "," + url.PathEscape(mask)
}

// GetStaticRoutes lists configured static routes. A route with several
// forwarding addresses yields one entry per address.
func (c *Client) GetStaticRoutes(ctx context.Context) ([]StaticRoute, error) {
	tree, err := c.getData(ctx, staticRoutesResource)
	if absent(err) {
		return []StaticRoute{}, nil
	}
	if err != nil {
		return nil, err
	}
	routes := []StaticRoute{}
	list, _ := lookupPath(tree, "Cisco-IOS-XE-native:route", staticRouteList)
	for _, entry := range asList(list) {
		prefix, mask := field(entry, "prefix"), field(entry, "mask")
		fwds, _ := lookup(entry, "fwd-list")
		for _, fwd := range asList(fwds) {
			routes = append(routes, StaticRoute{Prefix: prefix, Mask: mask, NextHop: field(fwd, "fwd")})
		}
	}
	return routes, nil
}

// AddStaticRoute creates or replaces the route for prefix/mask.
func (c *Client) AddStaticRoute(ctx context.Context, route StaticRoute) error {
	body := map[string]interface{}{
		"Cisco-IOS-XE-native:" + staticRouteList: []interface{}{
			map[string]interface{}{
				"prefix": route.Prefix,
				"mask":   route.Mask,
				"fwd-list": []interface{}{
					map[string]interface{}{"fwd": route.NextHop},
				},
			},
		},
	}
	return c.writeData(ctx, http.MethodPut, staticRouteResource(route.Prefix, route.Mask), body)
}

// DeleteStaticRoute removes every forwarding entry for prefix/mask.
func (c *Client) DeleteStaticRoute(ctx context.Context, prefix, mask string) error {
	return c.writeData(ctx, http.MethodDelete, staticRouteResource(prefix, mask), nil)
}
