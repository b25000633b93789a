package rbac

import "fmt"

// Registry is the static table of operations and their requirement sets.
// It is populated while the router is built, before any request is served,
// and never mutated afterwards; concurrent reads need no locking.
type Registry struct {
	ops map[string]Operation
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register records an operation's requirement set. Permission names are
// normalized (trimmed, lowercased, deduplicated). Registering the same
// operation twice is a wiring bug.
func (r *Registry) Register(op Operation) error {
	if op.ID == "" {
		return fmt.Errorf("rbac: operation id required")
	}
	if _, ok := r.ops[op.ID]; ok {
		return fmt.Errorf("rbac: operation %q already registered", op.ID)
	}
	op.Permissions = normalizePermissions(op.Permissions)
	r.ops[op.ID] = op
	return nil
}

// MustRegister is Register for startup wiring paths where a duplicate
// registration cannot be handled.
func (r *Registry) MustRegister(op Operation) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Lookup returns the registered operation, if any.
func (r *Registry) Lookup(id string) (Operation, bool) {
	op, ok := r.ops[id]
	return op, ok
}

// RequirementsFor returns the permission names required by an operation.
// Unregistered operations have an empty requirement set.
func (r *Registry) RequirementsFor(id string) []string {
	return r.ops[id].Permissions
}
