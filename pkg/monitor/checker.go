// Package monitor probes inventory routers and records their reachability.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/routerbot/routerbot/pkg/inventory"
	"github.com/routerbot/routerbot/pkg/restconf"
)

// Status represents the reachability of a router
type Status string

const (
	StatusOnline     Status = "online"
	StatusOffline    Status = "offline"
	StatusAuthFailed Status = "auth_failed"
	StatusError      Status = "error"
	StatusInvalid    Status = "invalid"
	StatusUnknown    Status = "unknown"
)

// severity orders statuses for report summaries; higher is worse.
func (s Status) severity() int {
	switch s {
	case StatusOnline:
		return 0
	case StatusUnknown:
		return 1
	case StatusInvalid:
		return 2
	case StatusAuthFailed:
		return 3
	case StatusError:
		return 4
	case StatusOffline:
		return 5
	}
	return 1
}

// Result represents the outcome of probing one router
type Result struct {
	GuildID   string        `json:"guild_id"`
	Router    string        `json:"router"`
	Host      string        `json:"host"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Hostname  string        `json:"hostname,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Prober is the single device call a probe needs.
type Prober interface {
	GetHostname(ctx context.Context) (restconf.HostnameConfig, error)
}

// Dialer builds a Prober for an endpoint.
type Dialer func(endpoint restconf.DeviceEndpoint) (Prober, error)

// RESTCONFDialer dials real devices.
func RESTCONFDialer(opts ...restconf.Option) Dialer {
	return func(endpoint restconf.DeviceEndpoint) (Prober, error) {
		return restconf.New(endpoint, opts...)
	}
}

// Checker probes routers with a hostname read
type Checker struct {
	base restconf.DeviceEndpoint
	dial Dialer
}

// NewChecker creates a checker. base supplies TLS and timeout settings for
// every profile.
func NewChecker(base restconf.DeviceEndpoint, dial Dialer) *Checker {
	return &Checker{base: base, dial: dial}
}

// Check probes one profile. It never returns an error; failures are
// reported through the result's status.
func (c *Checker) Check(ctx context.Context, p inventory.Profile) (result Result) {
	start := time.Now()
	result = Result{
		GuildID:   p.GuildID,
		Router:    p.Name,
		Host:      p.Host,
		Timestamp: start,
	}
	defer func() { result.Duration = time.Since(start) }()

	if !p.HasCredentials() {
		result.Status = StatusInvalid
		result.Message = "profile has no credentials"
		return result
	}

	prober, err := c.dial(p.Endpoint(c.base))
	if err != nil {
		result.Status = StatusInvalid
		result.Message = err.Error()
		return result
	}

	hostname, err := prober.GetHostname(ctx)
	if err != nil {
		result.Status = Classify(err)
		result.Message = err.Error()
		return result
	}
	result.Status = StatusOnline
	result.Hostname = hostname.Hostname
	result.Message = fmt.Sprintf("hostname %s", hostname.Hostname)
	return result
}

// Classify maps a probe error onto a status.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusOnline
	case errors.Is(err, restconf.ErrAuthFailure):
		return StatusAuthFailed
	case errors.Is(err, restconf.ErrDeviceUnreachable):
		return StatusOffline
	}
	return StatusError
}
