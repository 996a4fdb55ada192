package auth

import (
	"slices"
	"sort"
	"strings"
)

// Requirement is a role requirement declared on a resource group or an
// operation. The zero value is undeclared. A declared requirement with no
// roles admits any authenticated principal.
type Requirement struct {
	declared bool
	roles    []Role
}

// RequireRoles declares a requirement admitting any of roles.
func RequireRoles(roles ...Role) Requirement {
	return Requirement{declared: true, roles: slices.Clone(roles)}
}

// AnyAuthenticated declares an empty requirement: every authenticated
// principal is admitted.
func AnyAuthenticated() Requirement {
	return Requirement{declared: true}
}

// Inherit is the undeclared requirement.
func Inherit() Requirement {
	return Requirement{}
}

// Declared reports whether the requirement was declared.
func (r Requirement) Declared() bool { return r.declared }

// Roles returns a copy of the admitted roles.
func (r Requirement) Roles() []Role { return slices.Clone(r.roles) }

// Open reports whether every authenticated principal is admitted.
func (r Requirement) Open() bool { return len(r.roles) == 0 }

// Allows reports whether role satisfies the requirement.
func (r Requirement) Allows(role Role) bool {
	return r.Open() || slices.Contains(r.roles, role)
}

func (r Requirement) String() string {
	if !r.declared {
		return "inherit"
	}
	if r.Open() {
		return "any"
	}
	names := make([]string, len(r.roles))
	for i, role := range r.roles {
		names[i] = string(role)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// ResolveRoles returns the effective requirement of an operation. A
// declared operation requirement wins outright; otherwise the group's
// requirement applies; otherwise the result is undeclared, which admits
// any authenticated principal.
func ResolveRoles(group, operation Requirement) Requirement {
	if operation.declared {
		return operation
	}
	if group.declared {
		return group
	}
	return Requirement{}
}

// Resource is a named group of operations sharing a default requirement.
type Resource struct {
	name       string
	roles      Requirement
	operations map[string]*Operation
}

// NewResource declares a resource group with a default requirement.
func NewResource(name string, roles Requirement) *Resource {
	return &Resource{
		name:       name,
		roles:      roles,
		operations: make(map[string]*Operation),
	}
}

// Name returns the resource name.
func (r *Resource) Name() string { return r.name }

// Roles returns the group-level requirement.
func (r *Resource) Roles() Requirement { return r.roles }

// Operation registers an operation under the resource and returns it.
// Registering a name twice replaces the earlier declaration.
func (r *Resource) Operation(name string, roles Requirement) *Operation {
	op := &Operation{
		resource:  r.name,
		name:      name,
		declared:  roles,
		effective: ResolveRoles(r.roles, roles),
	}
	r.operations[name] = op
	return op
}

// Lookup returns a registered operation.
func (r *Resource) Lookup(name string) (*Operation, bool) {
	op, ok := r.operations[name]
	return op, ok
}

// Operations returns the registered operations sorted by name.
func (r *Resource) Operations() []*Operation {
	ops := make([]*Operation, 0, len(r.operations))
	for _, op := range r.operations {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].name < ops[j].name })
	return ops
}

// Operation is a protected operation with its declared and resolved
// requirements. Operations are immutable once registered.
type Operation struct {
	resource  string
	name      string
	declared  Requirement
	effective Requirement
}

// Name returns the operation name.
func (o *Operation) Name() string { return o.name }

// Resource returns the name of the owning resource.
func (o *Operation) Resource() string { return o.resource }

// DeclaredRoles returns the requirement declared on the operation itself.
func (o *Operation) DeclaredRoles() Requirement { return o.declared }

// RequiredRoles returns the effective requirement after resolution.
func (o *Operation) RequiredRoles() Requirement { return o.effective }
