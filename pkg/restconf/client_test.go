package restconf

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// newTestClient starts a TLS device double and returns a client for it.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	endpoint := DeviceEndpoint{
		BaseURL:  srv.URL + "/restconf",
		Username: "admin",
		Password: "secret",
		Timeout:  2 * time.Second,
	}
	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	c, err := New(endpoint, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, srv
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", mediaJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestDeviceEndpoint_Validate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint DeviceEndpoint
		wantErr  bool
	}{
		{"basic auth", DeviceEndpoint{BaseURL: "https://10.0.0.1/restconf", Username: "admin"}, false},
		{"token auth", DeviceEndpoint{BaseURL: "https://r1.lab/restconf", Token: "abc"}, false},
		{"empty url", DeviceEndpoint{Username: "admin"}, true},
		{"ftp scheme", DeviceEndpoint{BaseURL: "ftp://10.0.0.1/restconf", Username: "admin"}, true},
		{"no host", DeviceEndpoint{BaseURL: "https:///restconf", Username: "admin"}, true},
		{"no credentials", DeviceEndpoint{BaseURL: "https://10.0.0.1/restconf"}, true},
		{"negative timeout", DeviceEndpoint{BaseURL: "https://10.0.0.1/restconf", Username: "a", Timeout: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.endpoint.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeviceEndpoint_StringHidesSecrets(t *testing.T) {
	e := DeviceEndpoint{BaseURL: "https://10.0.0.1/restconf/", Username: "admin", Password: "hunter2", Token: "tok"}
	s := e.String()
	if strings.Contains(s, "hunter2") || strings.Contains(s, "tok)") {
		t.Errorf("String() leaks secrets: %s", s)
	}
	if e.Host() != "10.0.0.1" {
		t.Errorf("Host() = %q, want %q", e.Host(), "10.0.0.1")
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	var got *http.Request
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", mediaJSON)
		_, _ = w.Write([]byte(`{"Cisco-IOS-XE-native:hostname":"R1"}`))
	})

	if _, err := c.GetHostname(context.Background()); err != nil {
		t.Fatalf("GetHostname() error = %v", err)
	}
	if got.Header.Get("Accept") != mediaJSON {
		t.Errorf("Accept = %q, want %q", got.Header.Get("Accept"), mediaJSON)
	}
	user, pass, ok := got.BasicAuth()
	if !ok || user != "admin" || pass != "secret" {
		t.Errorf("BasicAuth() = %q, %q, %v", user, pass, ok)
	}
	if got.URL.Path != "/restconf/data/Cisco-IOS-XE-native:native/hostname" {
		t.Errorf("path = %q", got.URL.Path)
	}
}

func TestClient_BearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(DeviceEndpoint{BaseURL: srv.URL + "/restconf", Token: "t0k3n"}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.SetHostname(context.Background(), "R2"); err != nil {
		t.Fatalf("SetHostname() error = %v", err)
	}
	if auth != "Bearer t0k3n" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer t0k3n")
	}
}

func TestClient_StatusKinds(t *testing.T) {
	tests := []struct {
		status   int
		wantKind Kind
		wantErr  error
	}{
		{http.StatusUnauthorized, KindAuthFailure, ErrAuthFailure},
		{http.StatusForbidden, KindAuthFailure, ErrAuthFailure},
		{http.StatusNotFound, KindNotFound, ErrNotFound},
		{http.StatusBadRequest, KindValidation, ErrValidation},
		{http.StatusConflict, KindValidation, ErrValidation},
		{http.StatusPreconditionFailed, KindValidation, ErrValidation},
		{http.StatusUnprocessableEntity, KindValidation, ErrValidation},
		{http.StatusInternalServerError, KindDeviceError, ErrDeviceError},
		{http.StatusServiceUnavailable, KindDeviceError, ErrDeviceError},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			// Body is deliberately not an errors document
			c, _ := newTestClient(t, reply(tt.status, "not json"))
			_, err := c.GetInterfaces(context.Background())
			if KindOf(err) != tt.wantKind {
				t.Fatalf("KindOf(%v) = %v, want %v", err, KindOf(err), tt.wantKind)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantErr)
			}
			var re *Error
			if !errors.As(err, &re) {
				t.Fatalf("error %v is not *Error", err)
			}
			if re.Status != tt.status {
				t.Errorf("Status = %d, want %d", re.Status, tt.status)
			}
		})
	}
}

func TestClient_AuthFailureIsNotMalformed(t *testing.T) {
	c, _ := newTestClient(t, reply(http.StatusUnauthorized, "<html>login</html>"))
	_, err := c.GetHostname(context.Background())
	if !errors.Is(err, ErrAuthFailure) {
		t.Fatalf("GetHostname() error = %v, want AuthFailure", err)
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Errorf("401 reported as malformed response")
	}
}

func TestClient_ErrorMessageFromBody(t *testing.T) {
	body := `{"ietf-restconf:errors":{"error":[{"error-type":"application","error-tag":"invalid-value","error-message":"inconsistent value: Device refused one or more commands"}]}}`
	c, _ := newTestClient(t, reply(http.StatusBadRequest, body))

	err := c.SetInterfaceIP(context.Background(), "GigabitEthernet1", "10.0.0.1", "255.255.255.0")
	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if re.Message != "inconsistent value: Device refused one or more commands" {
		t.Errorf("Message = %q", re.Message)
	}
	if !strings.Contains(err.Error(), "PATCH ietf-interfaces:interfaces/interface=GigabitEthernet1") {
		t.Errorf("Error() = %q, missing op", err.Error())
	}
}

func TestClient_XMLErrorMessage(t *testing.T) {
	body := `<errors xmlns="urn:ietf:params:xml:ns:yang:ietf-restconf"><error><error-type>application</error-type><error-tag>data-missing</error-tag><error-message>uri keypath not found</error-message></error></errors>`
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", mediaXML)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(body))
	})
	_, err := c.GetInterface(context.Background(), "Loopback99")
	var re *Error
	if !errors.As(err, &re) || re.Kind != KindNotFound {
		t.Fatalf("error = %v, want NotFound", err)
	}
	if re.Message != "uri keypath not found" {
		t.Errorf("Message = %q", re.Message)
	}
}

func TestClient_TimeoutIsUnreachable(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	// Built without WithHTTPClient so the endpoint's own timeout and
	// TLS toggle apply.
	c, err := New(DeviceEndpoint{
		BaseURL:   srv.URL + "/restconf",
		Username:  "admin",
		VerifyTLS: false,
		Timeout:   50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.GetHostname(context.Background())
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Errorf("GetHostname() error = %v, want DeviceUnreachable", err)
	}
}

func TestClient_CustomHTTPClientKeepsEndpointTimeout(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	hc := srv.Client()
	c, err := New(DeviceEndpoint{
		BaseURL:  srv.URL + "/restconf",
		Username: "admin",
		Timeout:  50 * time.Millisecond,
	}, WithHTTPClient(hc))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if hc.Timeout != 0 {
		t.Errorf("caller's client Timeout = %v, want it left untouched", hc.Timeout)
	}

	start := time.Now()
	_, err = c.GetHostname(context.Background())
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Errorf("GetHostname() error = %v, want DeviceUnreachable", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("GetHostname() took %s, endpoint timeout not applied", elapsed)
	}
}

func TestClient_ContextDeadlineIsUnreachable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetRoutingTable(ctx)
	if KindOf(err) != KindDeviceUnreachable {
		t.Errorf("KindOf(%v) = %v, want %v", err, KindOf(err), KindDeviceUnreachable)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	url := srv.URL
	hc := srv.Client()
	srv.Close()

	c, err := New(DeviceEndpoint{BaseURL: url + "/restconf", Username: "admin"}, WithHTTPClient(hc))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.SetBanner(context.Background(), "hi"); !errors.Is(err, ErrDeviceUnreachable) {
		t.Errorf("SetBanner() error = %v, want DeviceUnreachable", err)
	}
}

func TestClient_VerifyTLSRejectsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(reply(http.StatusOK, `{"Cisco-IOS-XE-native:hostname":"R1"}`))
	defer srv.Close()

	c, err := New(DeviceEndpoint{BaseURL: srv.URL + "/restconf", Username: "admin", VerifyTLS: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.GetHostname(context.Background()); !errors.Is(err, ErrDeviceUnreachable) {
		t.Errorf("GetHostname() error = %v, want DeviceUnreachable", err)
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	bodies := []string{
		`{"ietf-interfaces:interfaces": {`,
		`{"a":1}{"b":2}`,
		`<<<`,
	}
	for _, body := range bodies {
		c, _ := newTestClient(t, reply(http.StatusOK, body))
		_, err := c.GetInterfaces(context.Background())
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("GetInterfaces(%q) error = %v, want MalformedResponse", body, err)
		}
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveRequest(method, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, method+" "+outcome)
}

func TestClient_Observer(t *testing.T) {
	obs := &recordingObserver{}
	status := http.StatusOK
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", mediaJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"Cisco-IOS-XE-native:hostname":"R1"}`))
	}, WithObserver(obs))

	_, _ = c.GetHostname(context.Background())
	status = http.StatusForbidden
	_ = c.SetHostname(context.Background(), "R9")

	want := []string{"GET ok", "PATCH auth_failure"}
	if len(obs.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", obs.calls, want)
	}
	for i := range want {
		if obs.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, obs.calls[i], want[i])
		}
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if KindOf(errors.New("boom")) != KindUnknown {
		t.Errorf("KindOf(foreign) != KindUnknown")
	}
	if KindOf(nil) != KindUnknown {
		t.Errorf("KindOf(nil) != KindUnknown")
	}
}
