package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type Permission string

const (
	PermAdmin            Permission = "ADMIN"
	PermUser             Permission = "USER"
	PermItemCreate       Permission = "ITEMCREATE"
	PermItemUpdate       Permission = "ITEMUPDATE"
	PermItemDelete       Permission = "ITEMDELETE"
	PermPermissionUpdate Permission = "PERMISSIONUPDATE"
)

// AllPermissions is ordered the way the permission table renders its columns.
var AllPermissions = []Permission{
	PermAdmin, PermUser, PermItemCreate, PermItemUpdate, PermItemDelete, PermPermissionUpdate,
}

func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllPermissions {
		if p == known {
			return p, nil
		}
	}
	return "", Validation(fmt.Sprintf("unknown permission %q", s))
}

// Permissions is stored as a comma separated column so it works the same on
// every supported driver.
type Permissions []Permission

func ParsePermissions(in []string) (Permissions, error) {
	out := make(Permissions, 0, len(in))
	for _, s := range in {
		p, err := ParsePermission(s)
		if err != nil {
			return nil, err
		}
		if !out.Has(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (ps Permissions) Has(p Permission) bool {
	for _, have := range ps {
		if have == p {
			return true
		}
	}
	return false
}

// Any reports whether ps and required intersect.
func (ps Permissions) Any(required ...Permission) bool {
	for _, r := range required {
		if ps.Has(r) {
			return true
		}
	}
	return false
}

func (ps Permissions) Strings() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

func (ps Permissions) String() string { return strings.Join(ps.Strings(), ", ") }

func (ps Permissions) Value() (driver.Value, error) {
	return strings.Join(ps.Strings(), ","), nil
}

func (ps *Permissions) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*ps = Permissions{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("permissions: unsupported scan type %T", src)
	}
	out := Permissions{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, Permission(part))
		}
	}
	*ps = out
	return nil
}

// HasPermission is the permission gate: it fails with a Forbidden error when
// u holds none of required.
func HasPermission(u *User, required ...Permission) error {
	if u != nil && u.Permissions.Any(required...) {
		return nil
	}
	var have Permissions
	if u != nil {
		have = u.Permissions
	}
	return Forbidden(fmt.Sprintf("You do not have sufficient permissions: %s. You have: %s",
		Permissions(required).String(), have.String()))
}

// CanModifyItem is the ownership check for item writes: the owner always may,
// anyone else needs ADMIN or the given capability.
func CanModifyItem(actor *User, it *Item, capability Permission) bool {
	if actor == nil || it == nil {
		return false
	}
	return it.UserID == actor.ID || actor.Permissions.Any(PermAdmin, capability)
}
