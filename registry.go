package crudgen

import (
	"cmp"
	"slices"
	"sync"
)

var registry = struct {
	sync.RWMutex
	entities map[string]*EntityMeta
}{entities: make(map[string]*EntityMeta)}

// Register adds meta to the process-wide registry, replacing any entity
// with the same name. Generated code calls it from init.
func Register(meta *EntityMeta) {
	registry.Lock()
	defer registry.Unlock()
	registry.entities[meta.Name] = meta
}

// Lookup returns the registered entity named name.
func Lookup(name string) (*EntityMeta, bool) {
	registry.RLock()
	defer registry.RUnlock()
	m, ok := registry.entities[name]
	return m, ok
}

// Registered returns all registered entities sorted by name.
func Registered() []*EntityMeta {
	registry.RLock()
	defer registry.RUnlock()
	out := make([]*EntityMeta, 0, len(registry.entities))
	for _, m := range registry.entities {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *EntityMeta) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
