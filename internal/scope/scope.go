// Package scope holds named, case-insensitive variable bindings shared by the template
// engine and the condition evaluator.
//
// A Scope is not safe for concurrent use. Each concurrent workflow run gets its own.
package scope

import (
	"sort"
	"strings"
	"sync"
)

// Well-known scope identifiers
const (
	TemplateScope  = "template"
	ConditionScope = "condition"
)

// Scope is a named mutable key to Value mapping
type Scope struct {
	id       string
	bindings map[string]Value
}

// New creates an empty scope
func New(id string) *Scope {
	return &Scope{id: id, bindings: make(map[string]Value)}
}

// NewWithDefaults creates a scope seeded with defaults
func NewWithDefaults(id string, defaults map[string]string) *Scope {
	s := New(id)
	s.SetAll(defaults)
	return s
}

// ID returns the scope identifier
func (s *Scope) ID() string { return s.id }

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Set binds name to value
func (s *Scope) Set(name, value string) {
	s.bindings[canonical(name)] = ParseValue(value)
}

// SetInt binds name to an integer
func (s *Scope) SetInt(name string, n int) {
	s.bindings[canonical(name)] = IntValue(n)
}

// SetAll binds every entry of values
func (s *Scope) SetAll(values map[string]string) {
	for k, v := range values {
		s.Set(k, v)
	}
}

// Get returns the text bound to name, or "" when unbound
func (s *Scope) Get(name string) string {
	return s.bindings[canonical(name)].String()
}

// Lookup returns the value bound to name
func (s *Scope) Lookup(name string) (Value, bool) {
	v, ok := s.bindings[canonical(name)]
	return v, ok
}

// Has reports whether name is bound
func (s *Scope) Has(name string) bool {
	_, ok := s.bindings[canonical(name)]
	return ok
}

// Increment adds by to the integer bound to name (0 when unbound or non-numeric),
// stores the result and returns it.
func (s *Scope) Increment(name string, by int) int {
	current, _ := s.Lookup(name)
	next := current.IntOr(0) + by
	s.SetInt(name, next)
	return next
}

// Keys returns the bound names in sorted order
func (s *Scope) Keys() []string {
	keys := make([]string, 0, len(s.bindings))
	for k := range s.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of bindings
func (s *Scope) Len() int { return len(s.bindings) }

// Snapshot copies the bindings into a plain string map
func (s *Scope) Snapshot() map[string]string {
	out := make(map[string]string, len(s.bindings))
	for k, v := range s.bindings {
		out[k] = v.String()
	}
	return out
}

// Clone copies the scope under a new id. The copies never share storage.
func (s *Scope) Clone(id string) *Scope {
	c := New(id)
	for k, v := range s.bindings {
		c.bindings[k] = v
	}
	return c
}

// Reset drops every binding, used at the start of a new execution pass
func (s *Scope) Reset() {
	s.bindings = make(map[string]Value)
}

// Registry hands out one Scope per id. The registry itself may be shared between
// goroutines; the scopes it returns may not.
type Registry struct {
	mu     sync.Mutex
	scopes map[string]*Scope
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string]*Scope)}
}

// Get returns the scope named id, creating it empty on first use
func (r *Registry) Get(id string) *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.scopes[id]; ok {
		return s
	}
	s := New(id)
	r.scopes[id] = s
	return s
}

// Release forgets the scope named id
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scopes, id)
}

// IDs lists the registered scope ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.scopes))
	for id := range r.scopes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
