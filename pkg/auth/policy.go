package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/routerbot/routerbot/pkg/util"
)

// Policy is the on-disk permission policy.
//
//	superusers: ["123456789012345678"]
//	groups:
//	  neteng: ["234567890123456789", "role:345678901234567890"]
//	permissions:
//	  interface.modify: [neteng]
//	  all: [admins]
//
// Group members are Discord user IDs or role IDs. A role ID may be written
// bare or with a "role:" prefix. A permission grantee that names a group
// grants its members only; any other grantee is matched as a user or role ID.
type Policy struct {
	SuperUsers  []string            `yaml:"superusers"`
	Groups      map[string][]string `yaml:"groups"`
	Permissions map[string][]string `yaml:"permissions"`
}

// LoadPolicy reads and validates a YAML policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading auth policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a YAML policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	p := &Policy{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing auth policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate rejects unknown permission names and empty group names.
func (p *Policy) Validate() error {
	v := &util.ValidationBuilder{}
	for perm := range p.Permissions {
		v.Add(Permission(perm).Known(), fmt.Sprintf("unknown permission %q", perm))
	}
	for name := range p.Groups {
		v.Add(name != "", "group name must not be empty")
	}
	return v.Build()
}
