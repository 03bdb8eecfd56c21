// Package auth provides permission-based access control for chat users.
package auth

// Permission defines an action that can be controlled
type Permission string

// Standard permissions
const (
	PermDeviceView   Permission = "device.view"
	PermDeviceModify Permission = "device.modify"

	PermInterfaceView   Permission = "interface.view"
	PermInterfaceModify Permission = "interface.modify"

	PermRoutingView   Permission = "routing.view"
	PermRoutingModify Permission = "routing.modify"

	PermConfigSave   Permission = "config.save"
	PermConfigBackup Permission = "config.backup"

	PermInventoryView   Permission = "inventory.view"
	PermInventoryModify Permission = "inventory.modify"

	PermAuditView Permission = "audit.view"

	PermAll Permission = "all" // Superuser - allows everything
)

// PermissionCategory groups related permissions
type PermissionCategory struct {
	Name        string
	Description string
	Permissions []Permission
}

// StandardCategories defines standard permission categories
var StandardCategories = []PermissionCategory{
	{
		Name:        "device",
		Description: "Hostname, banner and DNS settings",
		Permissions: []Permission{PermDeviceView, PermDeviceModify},
	},
	{
		Name:        "interface",
		Description: "Interface configuration",
		Permissions: []Permission{PermInterfaceView, PermInterfaceModify},
	},
	{
		Name:        "routing",
		Description: "Routing table and static routes",
		Permissions: []Permission{PermRoutingView, PermRoutingModify},
	},
	{
		Name:        "config",
		Description: "Saving and backing up configuration",
		Permissions: []Permission{PermConfigSave, PermConfigBackup},
	},
	{
		Name:        "inventory",
		Description: "Router inventory",
		Permissions: []Permission{PermInventoryView, PermInventoryModify},
	},
	{
		Name:        "audit",
		Description: "Audit log access",
		Permissions: []Permission{PermAuditView},
	},
}

// Known reports whether p is one of the standard permissions or PermAll.
func (p Permission) Known() bool {
	if p == PermAll {
		return true
	}
	for _, cat := range StandardCategories {
		for _, perm := range cat.Permissions {
			if perm == p {
				return true
			}
		}
	}
	return false
}

// IsReadOnly returns true if the permission is read-only
func (p Permission) IsReadOnly() bool {
	switch p {
	case PermDeviceView, PermInterfaceView, PermRoutingView, PermInventoryView,
		PermAuditView, PermConfigBackup:
		return true
	}
	return false
}

// Context provides context for permission checks
type Context struct {
	Device    string
	Interface string
	Resource  string
}

// NewContext creates a new permission context
func NewContext() *Context {
	return &Context{}
}

// WithDevice sets the device context
func (c *Context) WithDevice(device string) *Context {
	c.Device = device
	return c
}

// WithInterface sets the interface context
func (c *Context) WithInterface(iface string) *Context {
	c.Interface = iface
	return c
}

// WithResource sets a generic resource context
func (c *Context) WithResource(resource string) *Context {
	c.Resource = resource
	return c
}
