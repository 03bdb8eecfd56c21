package command

import (
	"context"

	"github.com/routerbot/routerbot/pkg/backup"
	"github.com/routerbot/routerbot/pkg/inventory"
	"github.com/routerbot/routerbot/pkg/restconf"
)

// Device is the router surface the handlers use. *restconf.Client
// implements it.
type Device interface {
	GetInterfaces(ctx context.Context) ([]restconf.InterfaceConfig, error)
	GetInterface(ctx context.Context, name string) (restconf.InterfaceConfig, error)
	SetInterfaceDescription(ctx context.Context, name, description string) error
	SetInterfaceState(ctx context.Context, name string, enabled bool) error
	SetInterfaceIP(ctx context.Context, name, ip, mask string) error

	GetHostname(ctx context.Context) (restconf.HostnameConfig, error)
	SetHostname(ctx context.Context, hostname string) error
	GetBanner(ctx context.Context) (restconf.Banner, error)
	SetBanner(ctx context.Context, message string) error
	GetDomainName(ctx context.Context) (restconf.DomainName, error)
	SetDomainName(ctx context.Context, domain string) error
	GetNameServers(ctx context.Context) (restconf.NameServers, error)
	SaveConfig(ctx context.Context) (string, error)

	GetRoutingTable(ctx context.Context) ([]restconf.RouteEntry, error)
	GetStaticRoutes(ctx context.Context) ([]restconf.StaticRoute, error)
	AddStaticRoute(ctx context.Context, route restconf.StaticRoute) error
	DeleteStaticRoute(ctx context.Context, prefix, mask string) error
}

var _ Device = (*restconf.Client)(nil)

// Dialer builds a Device for an endpoint. It must not block on the network.
type Dialer func(endpoint restconf.DeviceEndpoint) (Device, error)

// RESTCONFDialer dials *restconf.Client with the given options.
func RESTCONFDialer(opts ...restconf.Option) Dialer {
	return func(endpoint restconf.DeviceEndpoint) (Device, error) {
		return restconf.New(endpoint, opts...)
	}
}

// Inventory is the router profile store. *inventory.Store implements it.
type Inventory interface {
	Upsert(ctx context.Context, p inventory.Profile) (bool, error)
	Get(ctx context.Context, guild, name string) (*inventory.Profile, error)
	List(ctx context.Context, guild string) ([]inventory.Profile, error)
	Delete(ctx context.Context, guild, name string) (bool, error)
}

var _ Inventory = (*inventory.Store)(nil)

// Backups saves running configurations. *backup.Runner implements it.
type Backups interface {
	Save(ctx context.Context, target backup.Target) (*backup.Backup, error)
}

var _ Backups = (*backup.Runner)(nil)

// Observer counts command outcomes. *metrics.Metrics implements it.
type Observer interface {
	ObserveCommand(command, outcome string)
}
