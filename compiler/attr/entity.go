package attr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/crudgen"
)

// Entity holds the struct-level directives of an entity.
type Entity struct {
	Name             string
	Plural           string
	Table            string
	Description      string
	DefaultSort      string
	FulltextLanguage string

	Relations []Relation
	Hooks     []Hook
	Overrides []Override
}

// Relation is a //crud:relation definition.
type Relation struct {
	Name   string
	Kind   string
	Entity string
	Column string
}

// Hook binds a function to a hook coordinate.
type Hook struct {
	Key  crudgen.HookKey
	Func string
}

// Override is a legacy single-function replacement of a whole operation.
type Override struct {
	Name   string // e.g. fn_get_one
	Action crudgen.Action
	Func   string
}

// ParseEntity parses the //crud: directives of a struct doc comment, given
// without their prefix (e.g. "entity name=author").
func ParseEntity(directives []string) (*Entity, []Problem) {
	e := &Entity{}
	var problems []Problem
	for _, line := range directives {
		name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		raw := splitTop(rest, isSpaceOrComma)
		var err error
		switch name {
		case "hook":
			problems = append(problems, e.hooks(raw)...)
		case "override":
			problems = append(problems, e.overrides(raw)...)
		case "entity", "relation":
			items, ps := parseItems(raw)
			problems = append(problems, ps...)
			if name == "entity" {
				err = e.entity(items)
			} else {
				err = e.relation(items)
			}
		default:
			err = errors.New("unknown directive")
		}
		if err != nil {
			problems = append(problems, Problem{Item: line, Err: err})
		}
	}
	return e, problems
}

func (e *Entity) entity(items []Directive) error {
	var errs []error
	for _, d := range items {
		if d.Kind != KeyValue {
			errs = append(errs, fmt.Errorf("entity: unexpected %q", d.Name))
			continue
		}
		switch d.Name {
		case "name":
			e.Name = d.Value
		case "plural":
			e.Plural = d.Value
		case "table":
			e.Table = d.Value
		case "description":
			e.Description = d.Value
		case "default_sort":
			e.DefaultSort = d.Value
		case "fulltext_language":
			e.FulltextLanguage = d.Value
		default:
			errs = append(errs, fmt.Errorf("entity: unknown key %q", d.Name))
		}
	}
	return errors.Join(errs...)
}

func (e *Entity) relation(items []Directive) error {
	var r Relation
	for _, d := range items {
		if d.Kind != KeyValue {
			return fmt.Errorf("relation: unexpected %q", d.Name)
		}
		switch d.Name {
		case "name":
			r.Name = d.Value
		case "kind":
			r.Kind = d.Value
		case "entity":
			r.Entity = d.Value
		case "column":
			r.Column = d.Value
		default:
			return fmt.Errorf("relation: unknown key %q", d.Name)
		}
	}
	if r.Name == "" {
		return errors.New("relation: missing name")
	}
	e.Relations = append(e.Relations, r)
	return nil
}

func (e *Entity) hooks(items []string) []Problem {
	var problems []Problem
	for _, item := range items {
		coord, fn, ok := cutFunc(item)
		if !ok {
			problems = append(problems, Problem{Item: item, Err: errors.New("hook: want op::cardinality::phase=function")})
			continue
		}
		key, err := crudgen.ParseHookKey(coord)
		if err != nil {
			problems = append(problems, Problem{Item: item, Err: err})
			continue
		}
		e.Hooks = append(e.Hooks, Hook{Key: key, Func: fn})
	}
	return problems
}

func (e *Entity) overrides(items []string) []Problem {
	var problems []Problem
	for _, item := range items {
		name, fn, ok := cutFunc(item)
		action, known := crudgen.LegacyOverrides[name]
		if !ok || !known {
			problems = append(problems, Problem{Item: item, Err: errors.New("override: want fn_<operation>=function")})
			continue
		}
		e.Overrides = append(e.Overrides, Override{Name: name, Action: action, Func: fn})
	}
	return problems
}

// cutFunc splits "key=function" and checks the function is an identifier.
func cutFunc(item string) (key, fn string, ok bool) {
	key, fn, ok = strings.Cut(item, "=")
	key, fn = strings.TrimSpace(key), strings.TrimSpace(fn)
	return key, fn, ok && isIdent(fn)
}
