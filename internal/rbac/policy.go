// Package rbac holds the static role table and the authorization checks built
// on it. Every check fails closed for a nil principal or an unknown role.
package rbac

import "slices"

// Lookup returns the definition of a role.
func Lookup(role Role) (RoleDefinition, bool) {
	def, ok := roleTable[role]
	if !ok {
		return RoleDefinition{}, false
	}
	def.Permissions = slices.Clone(def.Permissions)
	return def, true
}

// Roles returns every role definition in display order.
func Roles() []RoleDefinition {
	out := make([]RoleDefinition, 0, len(roleOrder))
	for _, role := range roleOrder {
		def, _ := Lookup(role)
		out = append(out, def)
	}
	return out
}

// Valid reports whether the role exists in the table.
func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

// RoleName returns the display name of a role, or the raw value when unknown.
func RoleName(role Role) string {
	if def, ok := roleTable[role]; ok {
		return def.Name
	}
	return string(role)
}

// StoreScoped reports whether the role only sees its assigned store.
func (r Role) StoreScoped() bool {
	def, ok := roleTable[r]
	return ok && !def.CanAccessAllStores
}

// KnownPermission reports whether perm is granted by at least one role.
func KnownPermission(perm Permission) bool {
	return slices.Contains(allPermissions, perm)
}

// AllPermissions lists every permission string in use.
func AllPermissions() []Permission {
	return slices.Clone(allPermissions)
}

// HasPermission reports whether the principal holds perm. The role grants a base
// set; the principal's own permissions are added on top and never remove any.
func HasPermission(p *Principal, perm Permission) bool {
	if p == nil {
		return false
	}
	def, ok := roleTable[p.Role]
	if !ok {
		return false
	}
	return slices.Contains(def.Permissions, perm) || slices.Contains(p.Permissions, perm)
}

// HasAny reports whether the principal holds at least one of perms.
func HasAny(p *Principal, perms ...Permission) bool {
	for _, perm := range perms {
		if HasPermission(p, perm) {
			return true
		}
	}
	return false
}

// HasAll reports whether the principal holds every one of perms.
func HasAll(p *Principal, perms ...Permission) bool {
	for _, perm := range perms {
		if !HasPermission(p, perm) {
			return false
		}
	}
	return true
}

// CanAccessStore reports whether the principal may see the store's data.
func CanAccessStore(p *Principal, storeID string) bool {
	if p == nil {
		return false
	}
	def, ok := roleTable[p.Role]
	if !ok {
		return false
	}
	if def.CanAccessAllStores {
		return true
	}
	return p.AssignedStoreID != "" && p.AssignedStoreID == storeID
}

// CanManageUsers reports the role's user management flag.
func CanManageUsers(p *Principal) bool {
	if p == nil {
		return false
	}
	return roleTable[p.Role].CanManageUsers
}

// CanManageSystem reports the role's system management flag.
func CanManageSystem(p *Principal) bool {
	if p == nil {
		return false
	}
	return roleTable[p.Role].CanManageSystem
}

// EffectivePermissions returns the role permissions followed by any extra
// permissions not already granted by the role.
func EffectivePermissions(p *Principal) []Permission {
	if p == nil {
		return nil
	}
	def, ok := roleTable[p.Role]
	if !ok {
		return nil
	}
	out := slices.Clone(def.Permissions)
	for _, perm := range p.Permissions {
		if !slices.Contains(out, perm) {
			out = append(out, perm)
		}
	}
	return out
}
