// Package rbac declares per-operation permission requirements and enforces
// them on every request.
package rbac

import "strings"

// Operation describes one guarded handler: its identifier, the permission
// names a caller must hold, and whether it mutates state (and therefore
// gets audited).
type Operation struct {
	ID          string
	Permissions []string
	Mutating    bool
}

// Deny reasons, logged server-side. Externally every denial maps to the
// same rejection class.
const (
	DenyNoToken                = "no_token"
	DenyTokenInvalid           = "token_invalid"
	DenyUnknownSubject         = "unknown_subject"
	DenyInsufficientPermission = "insufficient_permission"
	DenyUndeclaredOperation    = "undeclared_operation"
)

// Policy controls how the guard treats operations with no declared
// requirement set.
type Policy int

const (
	// PolicyAllowUndeclared admits any authenticated caller to operations
	// without a declared requirement. This mirrors the host application's
	// observed behavior.
	PolicyAllowUndeclared Policy = iota
	// PolicyDenyUndeclared rejects operations that were never registered.
	PolicyDenyUndeclared
)

// ParsePolicy maps a config string to a Policy, defaulting to allow.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), "deny") {
		return PolicyDenyUndeclared
	}
	return PolicyAllowUndeclared
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAllPermissions(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
