// Package inventory stores named router profiles per guild in Redis.
package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/routerbot/routerbot/pkg/restconf"
	"github.com/routerbot/routerbot/pkg/util"
)

// GlobalGuild scopes profiles created outside a guild (DMs, CLI).
const GlobalGuild = "global"

// Profile is one registered router. Status fields are written by the
// monitor; the rest by the add-router command.
type Profile struct {
	GuildID     string
	Name        string
	Host        string
	Username    string
	Password    string
	Description string

	Status        string
	FailureReason string
	LastChecked   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields a user supplies.
func (p *Profile) Validate() error {
	v := &util.ValidationBuilder{}
	if err := ValidateName(p.Name); err != nil {
		v.AddErrorf("%v", err)
	}
	host := strings.TrimSpace(p.Host)
	v.Add(host != "", "host is required")
	v.Add(!strings.Contains(host, "/"), "host must be a bare host or host:port, not a URL")
	v.Add(!strings.ContainsAny(host, " \t"), "host must not contain whitespace")
	return v.Build()
}

// ValidateName accepts 1-64 letters, digits and hyphens.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("router name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("router name %q is longer than 64 characters", name)
	}
	if util.SanitizeName(name) != name {
		return fmt.Errorf("router name %q may only contain letters, digits and hyphens", name)
	}
	return nil
}

// HasCredentials reports whether the profile can authenticate at all.
func (p *Profile) HasCredentials() bool {
	return p.Username != "" && p.Password != ""
}

// Endpoint derives the RESTCONF endpoint for this profile. TLS and timeout
// settings come from base.
func (p *Profile) Endpoint(base restconf.DeviceEndpoint) restconf.DeviceEndpoint {
	return restconf.DeviceEndpoint{
		BaseURL:   restconf.BaseURLForHost(p.Host),
		Username:  p.Username,
		Password:  p.Password,
		VerifyTLS: base.VerifyTLS,
		CAFile:    base.CAFile,
		Timeout:   base.Timeout,
	}
}

func (p *Profile) fields() map[string]string {
	f := map[string]string{
		"guild":       p.GuildID,
		"name":        p.Name,
		"host":        p.Host,
		"username":    p.Username,
		"password":    p.Password,
		"description": p.Description,
		"status":      p.Status,
		"updated_at":  formatTime(p.UpdatedAt),
	}
	if p.FailureReason != "" {
		f["failure_reason"] = p.FailureReason
	}
	if !p.LastChecked.IsZero() {
		f["last_checked"] = formatTime(p.LastChecked)
	}
	return f
}

func profileFromFields(vals map[string]string) Profile {
	return Profile{
		GuildID:       vals["guild"],
		Name:          vals["name"],
		Host:          vals["host"],
		Username:      vals["username"],
		Password:      vals["password"],
		Description:   vals["description"],
		Status:        vals["status"],
		FailureReason: vals["failure_reason"],
		LastChecked:   parseTime(vals["last_checked"]),
		CreatedAt:     parseTime(vals["created_at"]),
		UpdatedAt:     parseTime(vals["updated_at"]),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
