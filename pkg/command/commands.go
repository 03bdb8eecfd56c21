// Package command implements the chat command set: a registry of commands,
// a dispatcher that validates, authorizes and audits invocations, and the
// handlers that drive the router.
package command

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/routerbot/routerbot/pkg/auth"
	"github.com/routerbot/routerbot/pkg/util"
)

// Option names shared by several commands.
const (
	optRouter      = "router"
	optName        = "name"
	optDescription = "description"
	optEnabled     = "enabled"
	optIP          = "ip"
	optMask        = "mask"
	optHostname    = "hostname"
	optPrefix      = "prefix"
	optNextHop     = "next-hop"
	optMessage     = "message"
	optDomain      = "domain"
	optHost        = "host"
	optUsername    = "username"
	optPassword    = "password"
	optLimit       = "limit"
)

func (d *Dispatcher) standardCommands() *Registry {
	r := NewRegistry()

	ifName := Option{Name: optName, Description: "Interface name, e.g. GigabitEthernet1 or gi1", Required: true}

	// Interfaces
	r.Register(&Command{
		Name: "get-interfaces", Description: "List interfaces with status and addresses",
		Permission: auth.PermInterfaceView, Device: true, Handler: getInterfaces,
	})
	r.Register(&Command{
		Name: "get-interface", Description: "Show one interface",
		Options:    []Option{ifName},
		Permission: auth.PermInterfaceView, Device: true, Handler: getInterface,
	})
	r.Register(&Command{
		Name: "set-interface-description", Description: "Set an interface description",
		Options: []Option{ifName,
			{Name: optDescription, Description: "New description", Required: true}},
		Permission: auth.PermInterfaceModify, Write: true, Device: true, Handler: setInterfaceDescription,
	})
	r.Register(&Command{
		Name: "set-interface-state", Description: "Enable or shut down an interface",
		Options: []Option{ifName,
			{Name: optEnabled, Description: "true to enable, false to shut down", Type: OptionBool, Required: true}},
		Permission: auth.PermInterfaceModify, Write: true, Device: true, Handler: setInterfaceState,
	})
	r.Register(&Command{
		Name: "set-interface-ip", Description: "Set the primary IPv4 address of an interface",
		Options: []Option{ifName,
			{Name: optIP, Description: "IPv4 address", Required: true},
			{Name: optMask, Description: "Netmask (255.255.255.0) or prefix length (24)", Required: true}},
		Permission: auth.PermInterfaceModify, Write: true, Device: true, Handler: setInterfaceIP,
	})

	// Device settings
	r.Register(&Command{
		Name: "get-hostname", Description: "Show the router hostname",
		Permission: auth.PermDeviceView, Device: true, Handler: getHostname,
	})
	r.Register(&Command{
		Name: "set-hostname", Description: "Change the router hostname",
		Options:    []Option{{Name: optHostname, Description: "New hostname", Required: true}},
		Permission: auth.PermDeviceModify, Write: true, Device: true, Handler: setHostname,
	})
	r.Register(&Command{
		Name: "get-banner-motd", Description: "Show the message-of-the-day banner",
		Permission: auth.PermDeviceView, Device: true, Handler: getBanner,
	})
	r.Register(&Command{
		Name: "set-banner-motd", Description: "Set the message-of-the-day banner",
		Options:    []Option{{Name: optMessage, Description: "Banner text", Required: true}},
		Permission: auth.PermDeviceModify, Write: true, Device: true, Handler: setBanner,
	})
	r.Register(&Command{
		Name: "get-domain-name", Description: "Show the IP domain name",
		Permission: auth.PermDeviceView, Device: true, Handler: getDomainName,
	})
	r.Register(&Command{
		Name: "set-domain-name", Description: "Set the IP domain name",
		Options:    []Option{{Name: optDomain, Description: "Domain, e.g. example.com", Required: true}},
		Permission: auth.PermDeviceModify, Write: true, Device: true, Handler: setDomainName,
	})
	r.Register(&Command{
		Name: "get-name-servers", Description: "List configured DNS servers",
		Permission: auth.PermDeviceView, Device: true, Handler: getNameServers,
	})
	r.Register(&Command{
		Name: "save-config", Description: "Save the running configuration to startup",
		Permission: auth.PermConfigSave, Write: true, Device: true, Handler: saveConfig,
	})
	r.Register(&Command{
		Name: "get-config", Description: "Back up the running configuration over SSH",
		Permission: auth.PermConfigBackup, Device: true, Handler: d.getConfig,
	})

	// Routing
	r.Register(&Command{
		Name: "get-routing-table", Description: "Show the routing table",
		Permission: auth.PermRoutingView, Device: true, Handler: getRoutingTable,
	})
	r.Register(&Command{
		Name: "get-static-routes", Description: "List configured static routes",
		Permission: auth.PermRoutingView, Device: true, Handler: getStaticRoutes,
	})
	r.Register(&Command{
		Name: "add-static-route", Description: "Add a static route",
		Options: []Option{
			{Name: optPrefix, Description: "Destination network", Required: true},
			{Name: optMask, Description: "Netmask or prefix length", Required: true},
			{Name: optNextHop, Description: "Next-hop address", Required: true}},
		Permission: auth.PermRoutingModify, Write: true, Device: true, Handler: addStaticRoute,
	})
	r.Register(&Command{
		Name: "delete-static-route", Description: "Delete a static route",
		Options: []Option{
			{Name: optPrefix, Description: "Destination network", Required: true},
			{Name: optMask, Description: "Netmask or prefix length", Required: true}},
		Permission: auth.PermRoutingModify, Write: true, Device: true, Handler: deleteStaticRoute,
	})

	// Inventory
	r.Register(&Command{
		Name: "add-router", Description: "Register or update a router for this server",
		Options: []Option{
			{Name: optName, Description: "Short name used with router:<name>", Required: true},
			{Name: optHost, Description: "Address or host:port", Required: true},
			{Name: optUsername, Description: "RESTCONF/SSH username", Required: true},
			{Name: optPassword, Description: "RESTCONF/SSH password", Required: true},
			{Name: optDescription, Description: "Free-form note"}},
		Permission: auth.PermInventoryModify, Write: true, Private: true, Handler: d.addRouter,
	})
	r.Register(&Command{
		Name: "list-routers", Description: "List registered routers and their status",
		Permission: auth.PermInventoryView, Handler: d.listRouters,
	})
	r.Register(&Command{
		Name: "remove-router", Description: "Remove a registered router",
		Options:    []Option{{Name: optName, Description: "Router name", Required: true}},
		Permission: auth.PermInventoryModify, Write: true, Handler: d.removeRouter,
	})

	// General
	r.Register(&Command{
		Name: "audit-log", Description: "Show recent configuration changes",
		Options:    []Option{{Name: optLimit, Description: "Number of entries (1-25)", Type: OptionInt}},
		Permission: auth.PermAuditView, Handler: d.auditLog,
	})
	r.Register(&Command{
		Name: "ping", Description: "Check that the bot is alive", Handler: d.ping,
	})
	r.Register(&Command{
		Name: "help", Description: "List available commands", Handler: d.help,
	})
	return r
}

var hostnamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]{0,62}$`)

// validateHostname follows IOS hostname rules: a letter first, then
// letters, digits and hyphens, at most 63 characters.
func validateHostname(name string) error {
	if !hostnamePattern.MatchString(name) {
		return util.NewValidationError(fmt.Sprintf("invalid hostname %q: use letters, digits and hyphens, starting with a letter (max 63)", name))
	}
	return nil
}

func validateDomain(domain string) error {
	if domain == "" || strings.ContainsAny(domain, " \t/") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return util.NewValidationError(fmt.Sprintf("invalid domain name %q", domain))
	}
	return nil
}

func requireIPv4(label, addr string) error {
	if !util.IsValidIPv4(addr) {
		return util.NewValidationError(fmt.Sprintf("%s %q is not a valid IPv4 address", label, addr))
	}
	return nil
}

func normalizeMask(mask string) (string, error) {
	m, err := util.NormalizeNetmask(mask)
	if err != nil {
		return "", util.NewValidationError(err.Error())
	}
	return m, nil
}
