package restconf

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/routerbot/routerbot/pkg/util"
)

// DefaultTimeout bounds a single RESTCONF round trip when the endpoint
// does not set one.
const DefaultTimeout = 10 * time.Second

// DeviceEndpoint identifies a RESTCONF server and the credentials used
// against it. It is built once from configuration and copied by value into
// each Client; nothing mutates it afterwards.
type DeviceEndpoint struct {
	// BaseURL is the RESTCONF root, e.g. https://10.0.0.1/restconf.
	// Data resources live under BaseURL/data, RPCs under BaseURL/operations.
	BaseURL string

	Username string
	Password string

	// Token, when set, is sent as a bearer token instead of basic auth.
	Token string

	VerifyTLS bool
	CAFile    string

	Timeout time.Duration
}

// BaseURLForHost returns the conventional RESTCONF root for a bare host.
func BaseURLForHost(host string) string {
	return "https://" + host + "/restconf"
}

// Validate checks the endpoint is usable before any request is attempted.
func (e DeviceEndpoint) Validate() error {
	v := &util.ValidationBuilder{}

	u, err := url.Parse(e.BaseURL)
	switch {
	case e.BaseURL == "":
		v.AddErrorf("base URL is required")
	case err != nil:
		v.AddErrorf("base URL %q: %v", e.BaseURL, err)
	case u.Scheme != "https" && u.Scheme != "http":
		v.AddErrorf("base URL %q must use http or https", e.BaseURL)
	case u.Host == "":
		v.AddErrorf("base URL %q has no host", e.BaseURL)
	}

	v.Add(e.Username != "" || e.Token != "", "username or token is required")
	v.Add(e.Timeout >= 0, "timeout must not be negative")

	return v.Build()
}

// Host returns the host part of BaseURL (without port).
func (e DeviceEndpoint) Host() string {
	u, err := url.Parse(e.BaseURL)
	if err != nil {
		return e.BaseURL
	}
	return u.Hostname()
}

// String renders the endpoint without secrets.
func (e DeviceEndpoint) String() string {
	auth := "basic"
	if e.Token != "" {
		auth = "token"
	}
	return fmt.Sprintf("%s (user=%s auth=%s verify-tls=%t timeout=%s)",
		strings.TrimRight(e.BaseURL, "/"), e.Username, auth, e.VerifyTLS, e.timeout())
}

func (e DeviceEndpoint) timeout() time.Duration {
	if e.Timeout <= 0 {
		return DefaultTimeout
	}
	return e.Timeout
}

func (e DeviceEndpoint) dataURL(resource string) string {
	return strings.TrimRight(e.BaseURL, "/") + "/data/" + resource
}

func (e DeviceEndpoint) operationsURL(rpc string) string {
	return strings.TrimRight(e.BaseURL, "/") + "/operations/" + rpc
}
