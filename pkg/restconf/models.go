package restconf

import "github.com/routerbot/routerbot/pkg/util"

// InterfaceConfig is a snapshot of one ietf-interfaces entry.
type InterfaceConfig struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
	IPv4Address string `json:"ipv4_address,omitempty"`
	SubnetMask  string `json:"subnet_mask,omitempty"`
}

// AdminState renders Enabled as "up" or "down".
func (i InterfaceConfig) AdminState() string {
	if i.Enabled {
		return "up"
	}
	return "down"
}

// Prefix returns the primary IPv4 address in CIDR form, or "" when none.
func (i InterfaceConfig) Prefix() string {
	if i.IPv4Address == "" {
		return ""
	}
	return util.FormatPrefix(i.IPv4Address, i.SubnetMask)
}

type HostnameConfig struct {
	Hostname string `json:"hostname"`
}

// RouteEntry is one route from the operational RIB.
type RouteEntry struct {
	Destination string `json:"destination"`
	NextHop     string `json:"next_hop,omitempty"`
	Interface   string `json:"interface,omitempty"`
	Metric      uint32 `json:"metric"`
	Protocol    string `json:"protocol,omitempty"`
}

// StaticRoute is a configured IOS-XE static route with a forwarding address.
type StaticRoute struct {
	Prefix  string `json:"prefix"`
	Mask    string `json:"mask"`
	NextHop string `json:"next_hop"`
}

// CIDR renders the route destination in prefix-length form.
func (r StaticRoute) CIDR() string {
	return util.FormatPrefix(r.Prefix, r.Mask)
}

type Banner struct {
	Message string `json:"message"`
}

type DomainName struct {
	Name string `json:"name"`
}

type NameServers struct {
	Servers []string `json:"servers"`
}
