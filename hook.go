package crudgen

import (
	"fmt"
	"strings"
)

// Operation is the CRUD operation a hook attaches to.
type Operation uint8

// Operations, in the order they appear in hook coordinates.
const (
	OpCreate Operation = iota + 1
	OpRead
	OpUpdate
	OpDelete
)

var operationNames = map[Operation]string{
	OpCreate: "create",
	OpRead:   "read",
	OpUpdate: "update",
	OpDelete: "delete",
}

// String implements fmt.Stringer.
func (o Operation) String() string {
	if s, ok := operationNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Operation(%d)", o)
}

// Cardinality distinguishes single-record from batch operations.
type Cardinality uint8

// Cardinalities.
const (
	One Cardinality = iota + 1
	Many
)

// String implements fmt.Stringer.
func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case Many:
		return "many"
	default:
		return fmt.Sprintf("Cardinality(%d)", c)
	}
}

// Phase is the point in an operation a hook runs at.
type Phase uint8

// Phases. Body replaces the default persistence logic; Pre and Post run
// around it.
const (
	Pre Phase = iota + 1
	Body
	Post
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case Pre:
		return "pre"
	case Body:
		return "body"
	case Post:
		return "post"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

// HookKey is the coordinate of a hook: operation × cardinality × phase.
// Its text form is "create::one::pre".
type HookKey struct {
	Op    Operation
	Card  Cardinality
	Phase Phase
}

// String implements fmt.Stringer.
func (k HookKey) String() string {
	return k.Op.String() + "::" + k.Card.String() + "::" + k.Phase.String()
}

// Action returns the operation/cardinality pair without the phase.
func (k HookKey) Action() Action {
	return Action{Op: k.Op, Card: k.Card}
}

// ParseHookKey parses "op::card::phase".
func ParseHookKey(s string) (HookKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "::")
	if len(parts) != 3 {
		return HookKey{}, fmt.Errorf("crudgen: hook key %q: want op::cardinality::phase", s)
	}
	var k HookKey
	for op, name := range operationNames {
		if parts[0] == name {
			k.Op = op
		}
	}
	if k.Op == 0 {
		return HookKey{}, fmt.Errorf("crudgen: hook key %q: unknown operation %q", s, parts[0])
	}
	switch parts[1] {
	case "one":
		k.Card = One
	case "many":
		k.Card = Many
	default:
		return HookKey{}, fmt.Errorf("crudgen: hook key %q: unknown cardinality %q", s, parts[1])
	}
	switch parts[2] {
	case "pre":
		k.Phase = Pre
	case "body":
		k.Phase = Body
	case "post":
		k.Phase = Post
	default:
		return HookKey{}, fmt.Errorf("crudgen: hook key %q: unknown phase %q", s, parts[2])
	}
	return k, nil
}

// Action identifies a generated operation.
type Action struct {
	Op   Operation
	Card Cardinality
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return a.Op.String() + "::" + a.Card.String()
}

// Actions that generated services implement. update::many has no
// generated operation.
var (
	ActionGet        = Action{OpRead, One}
	ActionList       = Action{OpRead, Many}
	ActionCreate     = Action{OpCreate, One}
	ActionCreateMany = Action{OpCreate, Many}
	ActionUpdate     = Action{OpUpdate, One}
	ActionDelete     = Action{OpDelete, One}
	ActionDeleteMany = Action{OpDelete, Many}
)

// LegacyOverrides maps the single-function override names to the action
// they replace.
var LegacyOverrides = map[string]Action{
	"fn_get_one":     ActionGet,
	"fn_get_all":     ActionList,
	"fn_create":      ActionCreate,
	"fn_update":      ActionUpdate,
	"fn_delete":      ActionDelete,
	"fn_delete_many": ActionDeleteMany,
}
