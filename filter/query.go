package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/crudgen"
)

// Pagination bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// Op is a comparison operator of a Condition.
type Op string

// Operators. An Eq or Neq condition whose value is a slice tests membership,
// and one whose value is nil tests for NULL.
const (
	OpEq   Op = "eq"
	OpNeq  Op = "neq"
	OpGt   Op = "gt"
	OpGte  Op = "gte"
	OpLt   Op = "lt"
	OpLte  Op = "lte"
	OpLike Op = "like"
)

// suffixes maps filter key suffixes to operators.
var suffixes = []struct {
	suffix string
	op     Op
}{
	{"_gte", OpGte},
	{"_lte", OpLte},
	{"_neq", OpNeq},
	{"_like", OpLike},
	{"_gt", OpGt},
	{"_lt", OpLt},
}

// Condition is one column filter. Join names the relation of a dot-notation
// condition and is empty for columns of the entity itself.
type Condition struct {
	Join   string
	Column string
	Op     Op
	Value  any
}

// Field returns the column as addressed in the request.
func (c Condition) Field() string {
	if c.Join != "" {
		return c.Join + "." + c.Column
	}
	return c.Column
}

// Direction is a sort direction.
type Direction string

// Directions.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection parses a case-insensitive direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case Asc, Desc:
		return d, nil
	default:
		return "", fmt.Errorf("direction %q is neither ASC nor DESC", s)
	}
}

// Sort is one sort key.
type Sort struct {
	Join      string
	Column    string
	Direction Direction
}

// Field returns the column as addressed in the request.
func (s Sort) Field() string {
	if s.Join != "" {
		return s.Join + "." + s.Column
	}
	return s.Column
}

// Query is a validated list request. The zero value lists the first
// DefaultLimit rows in the default order.
type Query struct {
	Search     string
	Conditions []Condition
	Sort       []Sort
	Offset     int
	Limit      int // 0 is DefaultLimit
}

// Window returns the effective offset and limit.
func (q *Query) Window() (offset, limit int) {
	if q == nil {
		return 0, DefaultLimit
	}
	offset, limit = max(q.Offset, 0), q.Limit
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return offset, limit
}

// Validate checks every condition and sort key against the registries of
// meta. Queries built by Parse are valid; Validate serves queries built in
// code.
func (q *Query) Validate(meta *crudgen.EntityMeta) error {
	if q == nil {
		return nil
	}
	if q.Search != "" && len(meta.Fulltext) == 0 {
		return &Error{Param: "filter", Key: "q", Err: fmt.Errorf("%s has no fulltext columns", meta.Name)}
	}
	for _, c := range q.Conditions {
		if err := validCondition(meta, c); err != nil {
			return err
		}
	}
	for _, s := range q.Sort {
		if s.Direction != Asc && s.Direction != Desc {
			return &Error{Param: "sort", Key: s.Field(), Err: fmt.Errorf("direction %q is neither ASC nor DESC", s.Direction)}
		}
		if err := validSort(meta, s.Join, s.Column); err != nil {
			return err
		}
	}
	return nil
}

func validCondition(meta *crudgen.EntityMeta, c Condition) error {
	fail := func(err error) error { return &Error{Param: "filter", Key: c.Field(), Err: err} }
	if c.Join != "" {
		j, ok := meta.Join(c.Join)
		if !ok {
			return fail(fmt.Errorf("%s has no relation %q", meta.Name, c.Join))
		}
		if !j.CanFilter(c.Column) {
			return fail(fmt.Errorf("column %q of relation %q is not filterable", c.Column, c.Join))
		}
		if c.Op == OpLike {
			return fail(errors.New("substring matching is not supported on related columns"))
		}
	} else {
		if !filterable(meta, c.Column) {
			return fail(fmt.Errorf("column %q is not filterable", c.Column))
		}
		if c.Op == OpLike && !meta.CanLike(c.Column) {
			return fail(fmt.Errorf("column %q does not support substring matching", c.Column))
		}
	}
	switch c.Op {
	case OpEq, OpNeq:
	case OpLike:
		if _, ok := c.Value.(string); !ok {
			return fail(fmt.Errorf("substring matching requires a string, got %T", c.Value))
		}
	case OpGt, OpGte, OpLt, OpLte:
		switch c.Value.(type) {
		case nil, []any:
			return fail(fmt.Errorf("%s requires a single value", c.Op))
		}
	default:
		return fail(fmt.Errorf("unknown operator %q", c.Op))
	}
	return nil
}

func validSort(meta *crudgen.EntityMeta, join, column string) error {
	field := column
	if join != "" {
		field = join + "." + column
		j, ok := meta.Join(join)
		if !ok {
			return &Error{Param: "sort", Key: field, Err: fmt.Errorf("%s has no relation %q", meta.Name, join)}
		}
		if !j.CanSort(column) {
			return &Error{Param: "sort", Key: field, Err: fmt.Errorf("column %q of relation %q is not sortable", column, join)}
		}
		return nil
	}
	if !meta.CanSort(column) {
		return &Error{Param: "sort", Key: field, Err: fmt.Errorf("column %q is not sortable", column)}
	}
	return nil
}

// filterable reports whether col may be filtered on. The primary key is
// always filterable.
func filterable(meta *crudgen.EntityMeta, col string) bool {
	return col == meta.PrimaryKey || meta.CanFilter(col)
}
