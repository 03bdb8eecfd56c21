package restconf

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/routerbot/routerbot/pkg/util"
)

const interfacesResource = "ietf-interfaces:interfaces"

// interfaceResource addresses one list entry. The key is percent-encoded
// so names like GigabitEthernet0/0/1 stay a single path segment.
func interfaceResource(name string) string {
	return interfacesResource + "/interface=" + url.PathEscape(name)
}

// GetInterfaces lists every interface in device order.
func (c *Client) GetInterfaces(ctx context.Context) ([]InterfaceConfig, error) {
	tree, err := c.getData(ctx, interfacesResource)
	if err != nil {
		return nil, err
	}
	list, ok := lookupPath(tree, interfacesResource, "interface")
	if !ok {
		if _, hasRoot := lookup(tree, interfacesResource); hasRoot || tree == nil {
			return []InterfaceConfig{}, nil
		}
		return nil, malformed("GET "+interfacesResource, "response has no %s container", interfacesResource)
	}

	entries := asList(list)
	out := make([]InterfaceConfig, 0, len(entries))
	for _, entry := range entries {
		iface := parseInterface(entry)
		if iface.Name == "" {
			return nil, malformed("GET "+interfacesResource, "interface entry without a name")
		}
		out = append(out, iface)
	}
	return out, nil
}

// GetInterface fetches one interface by its full name.
func (c *Client) GetInterface(ctx context.Context, name string) (InterfaceConfig, error) {
	resource := interfaceResource(name)
	tree, err := c.getData(ctx, resource)
	if err != nil {
		return InterfaceConfig{}, err
	}
	entry, ok := lookup(tree, "ietf-interfaces:interface")
	if !ok {
		return InterfaceConfig{}, malformed("GET "+resource, "response has no interface entry")
	}
	entries := asList(entry)
	if len(entries) == 0 {
		return InterfaceConfig{}, &Error{Kind: KindNotFound, Op: "GET " + resource, Message: "interface " + name + " not found"}
	}
	iface := parseInterface(entries[0])
	if iface.Name == "" {
		iface.Name = name
	}
	return iface, nil
}

// SetInterfaceDescription merges a new description into the interface.
func (c *Client) SetInterfaceDescription(ctx context.Context, name, description string) error {
	return c.patchInterface(ctx, name, map[string]interface{}{
		"description": description,
	})
}

// SetInterfaceState sets the administrative state.
func (c *Client) SetInterfaceState(ctx context.Context, name string, enabled bool) error {
	return c.patchInterface(ctx, name, map[string]interface{}{
		"enabled": enabled,
	})
}

// SetInterfaceIP sets the primary IPv4 address. mask is dotted-quad.
func (c *Client) SetInterfaceIP(ctx context.Context, name, ip, mask string) error {
	return c.patchInterface(ctx, name, map[string]interface{}{
		"ietf-ip:ipv4": map[string]interface{}{
			"address": []interface{}{
				map[string]interface{}{"ip": ip, "netmask": mask},
			},
		},
	})
}

func (c *Client) patchInterface(ctx context.Context, name string, leaves map[string]interface{}) error {
	entry := map[string]interface{}{"name": name}
	for k, v := range leaves {
		entry[k] = v
	}
	body := map[string]interface{}{"ietf-interfaces:interface": entry}
	return c.writeData(ctx, http.MethodPatch, interfaceResource(name), body)
}

func parseInterface(entry interface{}) InterfaceConfig {
	iface := InterfaceConfig{
		Name:        field(entry, "name"),
		Type:        localName(field(entry, "type")),
		Description: field(entry, "description"),
		Enabled:     true, // YANG default for ietf-interfaces:enabled
	}
	if v, ok := lookup(entry, "enabled"); ok {
		if b, ok := asBool(v); ok {
			iface.Enabled = b
		}
	}

	addrs, ok := lookupPath(entry, "ietf-ip:ipv4", "address")
	if !ok {
		return iface
	}
	for _, addr := range asList(addrs) {
		ip := field(addr, "ip")
		if ip == "" {
			continue
		}
		iface.IPv4Address = ip
		iface.SubnetMask = field(addr, "netmask")
		if iface.SubnetMask == "" {
			if n, err := strconv.Atoi(strings.TrimSpace(field(addr, "prefix-length"))); err == nil {
				iface.SubnetMask, _ = util.PrefixLenToNetmask(n)
			}
		}
		break
	}
	return iface
}
