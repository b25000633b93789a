package rbac

import "testing"

func TestRegistryNormalizesPermissions(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Operation{ID: "op", Permissions: []string{" Appointments:Read ", "appointments:read", ""}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	perms := r.RequirementsFor("op")
	if len(perms) != 1 || perms[0] != "appointments:read" {
		t.Fatalf("unexpected requirement set %v", perms)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Operation{ID: "op"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(Operation{ID: "op"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistryRejectsEmptyID(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Operation{}); err == nil {
		t.Fatalf("expected error for empty operation id")
	}
}

func TestRequirementsForUnregistered(t *testing.T) {
	r := NewRegistry()
	if perms := r.RequirementsFor("missing"); len(perms) != 0 {
		t.Fatalf("expected empty requirement set, got %v", perms)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatalf("expected lookup miss")
	}
}

func TestHasAllPermissionsIsContainment(t *testing.T) {
	granted := []string{"appointments:read"}
	required := normalizePermissions([]string{"appointments:read", "appointments:write"})
	if hasAllPermissions(granted, required) {
		t.Fatalf("non-empty intersection must not satisfy containment")
	}
	if !hasAllPermissions([]string{"appointments:read", "appointments:write"}, required) {
		t.Fatalf("superset must satisfy containment")
	}
	if !hasAllPermissions(nil, nil) {
		t.Fatalf("empty requirement is always satisfied")
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("deny") != PolicyDenyUndeclared {
		t.Fatalf("expected deny policy")
	}
	if ParsePolicy(" DENY ") != PolicyDenyUndeclared {
		t.Fatalf("expected deny policy for padded input")
	}
	if ParsePolicy("allow") != PolicyAllowUndeclared {
		t.Fatalf("expected allow policy")
	}
	if ParsePolicy("") != PolicyAllowUndeclared {
		t.Fatalf("expected allow policy by default")
	}
}
