// Package symbol allocates unique symbol names for a compilation session.
package symbol

import (
	"sort"
	"strconv"
	"sync"
)

// defaultBase is used when Fresh is called with an empty base name.
const defaultBase = "x"

// Symbol is a named, unbound algebraic variable. Two symbols are equal
// when their names are equal.
type Symbol struct {
	name string
}

// Name returns the display name, either "base" or "base_k".
func (s Symbol) Name() string { return s.name }

func (s Symbol) String() string { return s.name }

// IsZero reports whether s is the zero Symbol (never returned by a Registry).
func (s Symbol) IsZero() bool { return s.name == "" }

// Registry hands out symbols whose names never collide within its lifetime.
// A Registry is safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	used map[string]struct{}
	next map[string]int // smallest suffix that may still be free, per base
}

// NewRegistry creates an empty registry. Each compilation session should own one.
func NewRegistry() *Registry {
	return &Registry{
		used: make(map[string]struct{}),
		next: make(map[string]int),
	}
}

// Fresh returns a symbol named base if that name is unused, otherwise
// base_k for the smallest positive k not yet taken.
func (r *Registry) Fresh(base string) Symbol {
	if base == "" {
		base = defaultBase
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.used[base]; !taken {
		r.used[base] = struct{}{}
		return Symbol{name: base}
	}

	k := max(r.next[base], 1)
	for {
		name := base + "_" + strconv.Itoa(k)
		if _, taken := r.used[name]; !taken {
			r.used[name] = struct{}{}
			r.next[base] = k + 1
			return Symbol{name: name}
		}
		k++
	}
}

// Contains reports whether name has already been handed out.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.used[name]
	return ok
}

// Len returns the number of symbols allocated so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.used)
}

// Names returns every allocated name in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.used))
	for name := range r.used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
