package restconf

import (
	"context"
	"errors"
	"net/http"
)

const (
	nativeResource      = "Cisco-IOS-XE-native:native"
	hostnameResource    = nativeResource + "/hostname"
	bannerResource      = nativeResource + "/banner/motd"
	domainNameResource  = nativeResource + "/ip/domain/name"
	nameServersResource = nativeResource + "/ip/name-server"

	saveConfigRPC = "cisco-ia:save-config"
)

// GetHostname reads the configured hostname.
func (c *Client) GetHostname(ctx context.Context) (HostnameConfig, error) {
	tree, err := c.getData(ctx, hostnameResource)
	if err != nil {
		return HostnameConfig{}, err
	}
	v, ok := lookup(tree, "Cisco-IOS-XE-native:hostname")
	if !ok || asString(v) == "" {
		return HostnameConfig{}, malformed("GET "+hostnameResource, "hostname leaf missing")
	}
	return HostnameConfig{Hostname: asString(v)}, nil
}

// SetHostname replaces the hostname leaf.
func (c *Client) SetHostname(ctx context.Context, hostname string) error {
	return c.writeData(ctx, http.MethodPatch, hostnameResource, map[string]interface{}{
		"Cisco-IOS-XE-native:hostname": hostname,
	})
}

// GetBanner reads the message-of-the-day banner. An unset banner is
// returned as an empty message.
func (c *Client) GetBanner(ctx context.Context) (Banner, error) {
	tree, err := c.getData(ctx, bannerResource)
	if absent(err) {
		return Banner{}, nil
	}
	if err != nil {
		return Banner{}, err
	}
	msg, _ := lookupPath(tree, "Cisco-IOS-XE-native:motd", "banner")
	return Banner{Message: asString(msg)}, nil
}

// SetBanner replaces the message-of-the-day banner.
func (c *Client) SetBanner(ctx context.Context, message string) error {
	return c.writeData(ctx, http.MethodPatch, bannerResource, map[string]interface{}{
		"Cisco-IOS-XE-native:motd": map[string]interface{}{"banner": message},
	})
}

// GetDomainName reads the ip domain name; empty when unset.
func (c *Client) GetDomainName(ctx context.Context) (DomainName, error) {
	tree, err := c.getData(ctx, domainNameResource)
	if absent(err) {
		return DomainName{}, nil
	}
	if err != nil {
		return DomainName{}, err
	}
	name, _ := lookup(tree, "Cisco-IOS-XE-native:name")
	return DomainName{Name: asString(name)}, nil
}

// SetDomainName replaces the ip domain name.
func (c *Client) SetDomainName(ctx context.Context, domain string) error {
	return c.writeData(ctx, http.MethodPatch, domainNameResource, map[string]interface{}{
		"Cisco-IOS-XE-native:name": domain,
	})
}

// GetNameServers lists the global (no-vrf) DNS servers in configured order.
func (c *Client) GetNameServers(ctx context.Context) (NameServers, error) {
	tree, err := c.getData(ctx, nameServersResource)
	if absent(err) {
		return NameServers{Servers: []string{}}, nil
	}
	if err != nil {
		return NameServers{}, err
	}
	out := NameServers{Servers: []string{}}
	list, _ := lookupPath(tree, "Cisco-IOS-XE-native:name-server", "no-vrf")
	for _, v := range asList(list) {
		if s := asString(v); s != "" {
			out.Servers = append(out.Servers, s)
		}
	}
	return out, nil
}

// SaveConfig copies running-config to startup-config and returns the
// device's result text.
func (c *Client) SaveConfig(ctx context.Context) (string, error) {
	tree, err := c.invoke(ctx, saveConfigRPC, nil)
	if err != nil {
		return "", err
	}
	result, _ := lookupPath(tree, "cisco-ia:output", "result")
	if s := asString(result); s != "" {
		return s, nil
	}
	return "configuration saved", nil
}

// absent reports a 404, which IOS-XE returns for unset optional containers.
func absent(err error) bool {
	return errors.Is(err, ErrNotFound)
}
