package lineage

import (
	"fmt"
	"sort"
	"strings"
)

// Policy selects how declarations are keyed and how occurrences bind.
type Policy string

const (
	// PolicyLastWrite keys declarations by name alone: a later declarator
	// replaces an earlier one with the same name, wherever it lives, and its
	// reference list starts empty.
	PolicyLastWrite Policy = "last-write"
	// PolicyScoped keys declarations by (name, scope) and binds an
	// occurrence to the declaration found nearest along its scope chain.
	PolicyScoped Policy = "scoped"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyLastWrite:
		return PolicyLastWrite, nil
	case PolicyScoped:
		return PolicyScoped, nil
	default:
		return "", fmt.Errorf("unknown resolution policy %q (expected %q or %q)", raw, PolicyLastWrite, PolicyScoped)
	}
}

// Declaration is a named binding and the occurrences attributed to it.
type Declaration struct {
	Name       string
	Location   Location
	Scope      string
	References []Reference

	seq int
}

// Reference is one occurrence of a declared name.
type Reference struct {
	Location Location
	Context  string
}

func (d Declaration) clone() Declaration {
	out := d
	out.References = append([]Reference(nil), d.References...)
	return out
}

type declKey struct {
	name  string
	scope string
}

// Registry accumulates declarations during a single walk. It is owned by one
// walker and is not safe for concurrent use.
type Registry struct {
	policy Policy
	decls  map[declKey]*Declaration
	names  map[string]int
	seq    int
}

func NewRegistry(policy Policy) *Registry {
	if policy == "" {
		policy = PolicyLastWrite
	}
	return &Registry{
		policy: policy,
		decls:  make(map[declKey]*Declaration),
		names:  make(map[string]int),
	}
}

func (r *Registry) Policy() Policy {
	return r.policy
}

func (r *Registry) key(name, scope string) declKey {
	if r.policy == PolicyScoped {
		return declKey{name: name, scope: scope}
	}
	return declKey{name: name}
}

// Declare records a declaration, replacing any live one under the same key.
// It reports whether an earlier declaration was replaced.
func (r *Registry) Declare(name string, loc Location, scope string) bool {
	k := r.key(name, scope)
	_, replaced := r.decls[k]
	if !replaced {
		r.names[name]++
	}
	r.seq++
	r.decls[k] = &Declaration{
		Name:     name,
		Location: loc,
		Scope:    scope,
		seq:      r.seq,
	}
	return replaced
}

// Known reports whether any declaration named name has been recorded.
func (r *Registry) Known(name string) bool {
	return r.names[name] > 0
}

// Reference appends an occurrence to the declaration name binds to from
// context. It reports false when no declaration is visible.
func (r *Registry) Reference(name string, loc Location, context string) bool {
	decl := r.resolve(name, context)
	if decl == nil {
		return false
	}
	decl.References = append(decl.References, Reference{Location: loc, Context: context})
	return true
}

func (r *Registry) resolve(name, context string) *Declaration {
	if r.policy != PolicyScoped {
		return r.decls[declKey{name: name}]
	}
	for _, scope := range ScopeChain(context) {
		if decl, ok := r.decls[declKey{name: name, scope: scope}]; ok {
			return decl
		}
	}
	return nil
}

func (r *Registry) Len() int {
	return len(r.decls)
}

// Named returns the live declarations called name in declaration order.
func (r *Registry) Named(name string) []Declaration {
	if !r.Known(name) {
		return nil
	}
	var out []Declaration
	for k, decl := range r.decls {
		if k.name == name {
			out = append(out, decl.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// All returns copies of every live declaration sorted by name, then by
// source position.
func (r *Registry) All() []Declaration {
	out := make([]Declaration, 0, len(r.decls))
	for _, decl := range r.decls {
		out = append(out, decl.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if out[i].Location != out[j].Location {
			return out[i].Location.Before(out[j].Location)
		}
		return out[i].seq < out[j].seq
	})
	return out
}
