package command

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/routerbot/routerbot/pkg/backup"
	"github.com/routerbot/routerbot/pkg/util"
)

func getHostname(ctx context.Context, req *Request) (*Reply, error) {
	h, err := req.Device.GetHostname(ctx)
	if err != nil {
		return nil, err
	}
	return Info("Hostname", fmt.Sprintf("The router hostname is **%s**.", h.Hostname)), nil
}

func setHostname(ctx context.Context, req *Request) (*Reply, error) {
	name := req.Args.String(optHostname)
	if err := validateHostname(name); err != nil {
		return nil, err
	}
	if err := req.Device.SetHostname(ctx, name); err != nil {
		return nil, err
	}
	return Success("Hostname updated", fmt.Sprintf("Hostname set to **%s**.", name)), nil
}

func getBanner(ctx context.Context, req *Request) (*Reply, error) {
	b, err := req.Device.GetBanner(ctx)
	if err != nil {
		return nil, err
	}
	if b.Message == "" {
		return Info("MOTD Banner", "No banner is configured."), nil
	}
	return Info("MOTD Banner", "```\n"+b.Message+"\n```"), nil
}

func setBanner(ctx context.Context, req *Request) (*Reply, error) {
	msg := req.Args.String(optMessage)
	if err := req.Device.SetBanner(ctx, msg); err != nil {
		return nil, err
	}
	return Success("Banner updated", "The MOTD banner was updated."), nil
}

func getDomainName(ctx context.Context, req *Request) (*Reply, error) {
	dn, err := req.Device.GetDomainName(ctx)
	if err != nil {
		return nil, err
	}
	if dn.Name == "" {
		return Info("Domain Name", "No domain name is configured."), nil
	}
	return Info("Domain Name", fmt.Sprintf("The domain name is **%s**.", dn.Name)), nil
}

func setDomainName(ctx context.Context, req *Request) (*Reply, error) {
	domain := req.Args.String(optDomain)
	if err := validateDomain(domain); err != nil {
		return nil, err
	}
	if err := req.Device.SetDomainName(ctx, domain); err != nil {
		return nil, err
	}
	return Success("Domain name updated", fmt.Sprintf("Domain name set to **%s**.", domain)), nil
}

func getNameServers(ctx context.Context, req *Request) (*Reply, error) {
	ns, err := req.Device.GetNameServers(ctx)
	if err != nil {
		return nil, err
	}
	if len(ns.Servers) == 0 {
		return Info("Name Servers", "No name servers are configured."), nil
	}
	return Info("Name Servers", strings.Join(ns.Servers, "\n")), nil
}

func saveConfig(ctx context.Context, req *Request) (*Reply, error) {
	result, err := req.Device.SaveConfig(ctx)
	if err != nil {
		return nil, err
	}
	return Success("Configuration saved", result), nil
}

func (d *Dispatcher) getConfig(ctx context.Context, req *Request) (*Reply, error) {
	if d.deps.Backups == nil {
		return nil, util.NewNotConfiguredError("configuration backup", "set BACKUP_DIR")
	}
	target := backup.Target{
		Host:     req.Endpoint.Host(),
		Port:     d.deps.SSHPort,
		Username: req.Endpoint.Username,
		Password: req.Endpoint.Password,
	}
	b, err := d.deps.Backups.Save(ctx, target)
	if err != nil {
		return nil, err
	}
	reply := Success("Configuration backup", fmt.Sprintf("Saved running configuration of %s (%d bytes).", req.Router, len(b.Content)))
	reply.AddField("File", b.Path, false)
	return reply.Attach(filepath.Base(b.Path), []byte(b.Content)), nil
}
