package gen

import (
	"errors"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/load"
)

// Hooks holds the user functions bound to the operations of an entity.
type Hooks struct {
	funcs     map[crudgen.HookKey]string
	overrides map[crudgen.Action]string
}

// Func returns the function bound to the given action and phase, or "".
func (h *Hooks) Func(a crudgen.Action, p crudgen.Phase) string {
	if h == nil {
		return ""
	}
	return h.funcs[crudgen.HookKey{Op: a.Op, Card: a.Card, Phase: p}]
}

// Override returns the legacy function replacing the whole action, or "".
func (h *Hooks) Override(a crudgen.Action) string {
	if h == nil {
		return ""
	}
	return h.overrides[a]
}

// Len returns the number of bound functions.
func (h *Hooks) Len() int {
	if h == nil {
		return 0
	}
	return len(h.funcs) + len(h.overrides)
}

// resolveHooks validates the hook and override directives of t.
func resolveHooks(t *Type) (*Hooks, error) {
	h := &Hooks{
		funcs:     make(map[crudgen.HookKey]string),
		overrides: make(map[crudgen.Action]string),
	}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, typeError(t, format, args...))
	}
	exists := func(fn string) {
		_, err := t.schema.LookupFunc(fn)
		if err != nil && !errors.Is(err, load.ErrNoTypeInfo) {
			fail("hook function %s is not declared in package %s", fn, t.schema.Package().Name)
		}
	}
	actions := make(map[crudgen.Action]crudgen.HookKey)
	for _, hk := range t.attrs.Hooks {
		key := hk.Key
		switch {
		case key.Op == crudgen.OpUpdate && key.Card == crudgen.Many:
			fail("hook %s: there is no bulk update operation", key)
			continue
		case h.funcs[key] != "":
			fail("hook %s bound twice (%s and %s)", key, h.funcs[key], hk.Func)
			continue
		}
		h.funcs[key] = hk.Func
		actions[key.Action()] = key
		exists(hk.Func)
	}
	for _, o := range t.attrs.Overrides {
		if prev, ok := h.overrides[o.Action]; ok {
			fail("%s bound twice (%s and %s)", o.Name, prev, o.Func)
			continue
		}
		if key, ok := actions[o.Action]; ok {
			fail("%s=%s conflicts with hook %s=%s; use either the override or hook coordinates for %s",
				o.Name, o.Func, key, h.funcs[key], o.Action)
			continue
		}
		h.overrides[o.Action] = o.Func
		exists(o.Func)
	}
	return h, errors.Join(errs...)
}
