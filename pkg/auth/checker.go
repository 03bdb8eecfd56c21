package auth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/routerbot/routerbot/pkg/util"
)

// Subject is the identity a permission is checked for.
type Subject struct {
	ID    string
	Name  string
	Roles []string
}

func (s Subject) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// matches reports whether a policy entry names this subject directly, by
// user ID or role ID. Usernames never match: users pick and change them.
func (s Subject) matches(entry string) bool {
	if entry == "" {
		return false
	}
	if entry == s.ID {
		return true
	}
	role := strings.TrimPrefix(entry, "role:")
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Checker validates user permissions
type Checker struct {
	policy *Policy
}

// NewChecker creates a permission checker. A nil policy allows everything.
func NewChecker(policy *Policy) *Checker {
	return &Checker{policy: policy}
}

// Enforcing reports whether a policy is loaded.
func (c *Checker) Enforcing() bool {
	return c != nil && c.policy != nil
}

// Check verifies if a subject has a permission
func (c *Checker) Check(subject Subject, permission Permission, ctx *Context) error {
	if !c.Enforcing() {
		return nil
	}

	// Superusers can do anything
	if c.IsSuperUser(subject) {
		return nil
	}

	if c.checkPermissionMap(subject, permission, c.policy.Permissions) {
		return nil
	}

	return &PermissionError{
		User:       subject.String(),
		Permission: permission,
		Context:    ctx,
	}
}

// IsSuperUser returns true if the subject is listed as a superuser
func (c *Checker) IsSuperUser(subject Subject) bool {
	if !c.Enforcing() {
		return false
	}
	for _, su := range c.policy.SuperUsers {
		if subject.matches(su) {
			return true
		}
	}
	return false
}

// checkPermissionMap checks whether the subject has the given permission in
// permMap. It first checks the "all" wildcard key, then the specific key.
func (c *Checker) checkPermissionMap(subject Subject, permission Permission, permMap map[string][]string) bool {
	if grantees, ok := permMap[string(PermAll)]; ok {
		if c.subjectInGroups(subject, grantees) {
			return true
		}
	}

	grantees, ok := permMap[string(permission)]
	if !ok {
		return false
	}
	return c.subjectInGroups(subject, grantees)
}

func (c *Checker) subjectInGroups(subject Subject, allowed []string) bool {
	for _, grantee := range allowed {
		members, isGroup := c.policy.Groups[grantee]
		if !isGroup {
			// Direct user or role grant
			if subject.matches(grantee) {
				return true
			}
			continue
		}
		for _, member := range members {
			if subject.matches(member) {
				return true
			}
		}
	}
	return false
}

// ListPermissions returns the permissions a subject has, sorted.
func (c *Checker) ListPermissions(subject Subject) []Permission {
	if !c.Enforcing() || c.IsSuperUser(subject) {
		return []Permission{PermAll}
	}

	var perms []Permission
	for permStr, grantees := range c.policy.Permissions {
		if c.subjectInGroups(subject, grantees) {
			perms = append(perms, Permission(permStr))
		}
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// GroupsFor returns the policy groups a subject belongs to, sorted.
func (c *Checker) GroupsFor(subject Subject) []string {
	if !c.Enforcing() {
		return nil
	}
	var groups []string
	for groupName, members := range c.policy.Groups {
		for _, member := range members {
			if subject.matches(member) {
				groups = append(groups, groupName)
				break
			}
		}
	}
	sort.Strings(groups)
	return groups
}

// PermissionError represents a permission denial
type PermissionError struct {
	User       string
	Permission Permission
	Context    *Context
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("permission denied: user '%s' does not have '%s' permission", e.User, e.Permission)
	if e.Context != nil {
		if e.Context.Interface != "" {
			msg += fmt.Sprintf(" for interface '%s'", e.Context.Interface)
		}
		if e.Context.Device != "" {
			msg += fmt.Sprintf(" on device '%s'", e.Context.Device)
		}
	}
	return msg
}

func (e *PermissionError) Unwrap() error {
	return util.ErrPermissionDenied
}
