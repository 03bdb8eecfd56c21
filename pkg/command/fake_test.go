package command

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/routerbot/routerbot/pkg/audit"
	"github.com/routerbot/routerbot/pkg/backup"
	"github.com/routerbot/routerbot/pkg/inventory"
	"github.com/routerbot/routerbot/pkg/restconf"
)

// fakeDevice records calls and returns canned data.
type fakeDevice struct {
	calls []string
	err   error
	panic bool

	interfaces []restconf.InterfaceConfig
	hostname   string
	banner     string
	domain     string
	servers    []string
	routes     []restconf.RouteEntry
	static     []restconf.StaticRoute
}

func (f *fakeDevice) record(format string, args ...interface{}) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	if f.panic {
		panic("device exploded")
	}
	return f.err
}

func (f *fakeDevice) GetInterfaces(ctx context.Context) ([]restconf.InterfaceConfig, error) {
	return f.interfaces, f.record("GetInterfaces")
}

func (f *fakeDevice) GetInterface(ctx context.Context, name string) (restconf.InterfaceConfig, error) {
	if err := f.record("GetInterface %s", name); err != nil {
		return restconf.InterfaceConfig{}, err
	}
	for _, i := range f.interfaces {
		if i.Name == name {
			return i, nil
		}
	}
	return restconf.InterfaceConfig{}, &restconf.Error{Kind: restconf.KindNotFound, Op: "GET " + name, Status: 404}
}

func (f *fakeDevice) SetInterfaceDescription(ctx context.Context, name, description string) error {
	return f.record("SetInterfaceDescription %s %s", name, description)
}

func (f *fakeDevice) SetInterfaceState(ctx context.Context, name string, enabled bool) error {
	return f.record("SetInterfaceState %s %t", name, enabled)
}

func (f *fakeDevice) SetInterfaceIP(ctx context.Context, name, ip, mask string) error {
	return f.record("SetInterfaceIP %s %s %s", name, ip, mask)
}

func (f *fakeDevice) GetHostname(ctx context.Context) (restconf.HostnameConfig, error) {
	return restconf.HostnameConfig{Hostname: f.hostname}, f.record("GetHostname")
}

func (f *fakeDevice) SetHostname(ctx context.Context, hostname string) error {
	return f.record("SetHostname %s", hostname)
}

func (f *fakeDevice) GetBanner(ctx context.Context) (restconf.Banner, error) {
	return restconf.Banner{Message: f.banner}, f.record("GetBanner")
}

func (f *fakeDevice) SetBanner(ctx context.Context, message string) error {
	return f.record("SetBanner %s", message)
}

func (f *fakeDevice) GetDomainName(ctx context.Context) (restconf.DomainName, error) {
	return restconf.DomainName{Name: f.domain}, f.record("GetDomainName")
}

func (f *fakeDevice) SetDomainName(ctx context.Context, domain string) error {
	return f.record("SetDomainName %s", domain)
}

func (f *fakeDevice) GetNameServers(ctx context.Context) (restconf.NameServers, error) {
	return restconf.NameServers{Servers: f.servers}, f.record("GetNameServers")
}

func (f *fakeDevice) SaveConfig(ctx context.Context) (string, error) {
	return "[OK]", f.record("SaveConfig")
}

func (f *fakeDevice) GetRoutingTable(ctx context.Context) ([]restconf.RouteEntry, error) {
	return f.routes, f.record("GetRoutingTable")
}

func (f *fakeDevice) GetStaticRoutes(ctx context.Context) ([]restconf.StaticRoute, error) {
	return f.static, f.record("GetStaticRoutes")
}

func (f *fakeDevice) AddStaticRoute(ctx context.Context, route restconf.StaticRoute) error {
	return f.record("AddStaticRoute %s %s %s", route.Prefix, route.Mask, route.NextHop)
}

func (f *fakeDevice) DeleteStaticRoute(ctx context.Context, prefix, mask string) error {
	return f.record("DeleteStaticRoute %s %s", prefix, mask)
}

// memoryAudit keeps events in a slice.
type memoryAudit struct {
	events []*audit.Event
}

func (m *memoryAudit) Log(event *audit.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memoryAudit) Query(filter audit.Filter) ([]*audit.Event, error) {
	var out []*audit.Event
	for i := len(m.events) - 1; i >= 0; i-- {
		if filter.Matches(m.events[i]) {
			out = append(out, m.events[i])
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryAudit) Close() error { return nil }

type countingObserver map[string]int

func (o countingObserver) ObserveCommand(command, outcome string) {
	o[command+"/"+outcome]++
}

type fakeBackups struct {
	target backup.Target
}

func (f *fakeBackups) Save(ctx context.Context, target backup.Target) (*backup.Backup, error) {
	f.target = target
	return &backup.Backup{
		Host:    target.Host,
		Path:    "/var/backups/running_config_" + target.Host + "_20240101_000000.txt",
		Content: "hostname edge-1\nend\n",
	}, nil
}

var defaultEndpoint = restconf.DeviceEndpoint{
	BaseURL:  "https://10.0.0.1/restconf",
	Username: "admin",
	Password: "secret",
}

// harness wires a dispatcher to fakes; dialed records endpoints dialed.
type harness struct {
	d      *Dispatcher
	dev    *fakeDevice
	audit  *memoryAudit
	obs    countingObserver
	dialed []restconf.DeviceEndpoint
}

func newHarness(t *testing.T, mutate func(*Deps)) *harness {
	t.Helper()
	h := &harness{dev: &fakeDevice{}, audit: &memoryAudit{}, obs: countingObserver{}}
	deps := Deps{
		DefaultEndpoint: defaultEndpoint,
		Dial: func(e restconf.DeviceEndpoint) (Device, error) {
			h.dialed = append(h.dialed, e)
			return h.dev, nil
		},
		Audit:    h.audit,
		Observer: h.obs,
		SSHPort:  22,
	}
	if mutate != nil {
		mutate(&deps)
	}
	h.d = NewDispatcher(deps)
	return h
}

func (h *harness) run(command string, args Args) *Reply {
	return h.d.Execute(context.Background(), Invocation{
		Command: command,
		Args:    args,
		Actor:   Actor{UserID: "42", Username: "alice", GuildID: "g1"},
	})
}

func newTestInventory(t *testing.T) *inventory.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return inventory.NewStore(client)
}
