package attr

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// TagKey is the struct tag key holding field directives.
const TagKey = "crud"

// Field holds the directives of one struct field.
type Field struct {
	PrimaryKey      bool
	Sortable        bool
	Filterable      bool
	Fulltext        bool
	Exact           bool // filterable, but never with _like
	NonDB           bool
	UseTargetModels bool

	// Variant inclusion; every variant is included unless excluded.
	ExcludeCreate bool
	ExcludeUpdate bool
	ExcludeList   bool
	ExcludeOne    bool

	OnCreate string // Go expression
	OnUpdate string // Go expression
	Validate string // go-playground/validator tag

	Join *Join
}

// Join is the configuration of a join(...) group.
type Join struct {
	One      bool // load for single-record responses
	All      bool // load for list responses
	Depth    int
	HasDepth bool
	Relation string

	Filterable []string
	Sortable   []string
}

// ParseTag parses the crud directives of a raw struct tag. A missing crud
// key yields an empty Field.
func ParseTag(tag string) (*Field, []Problem) {
	value, _ := reflect.StructTag(tag).Lookup(TagKey)
	return ParseField(value)
}

// ParseField parses a field directive list.
func ParseField(s string) (*Field, []Problem) {
	ds, problems := Parse(s)
	f := &Field{}
	for _, d := range ds {
		if err := f.apply(d); err != nil {
			problems = append(problems, Problem{Item: d.Name, Err: err})
		}
	}
	return f, problems
}

func (f *Field) apply(d Directive) error {
	switch d.Kind {
	case Flag:
		return f.flag(d.Name)
	case KeyValue:
		return f.keyValue(d.Name, d.Value)
	case Group:
		switch d.Name {
		case "exclude":
			for _, a := range d.Args {
				if a.Kind != Flag {
					return fmt.Errorf("exclude takes variant names, got %q", a.Name)
				}
				if err := f.exclude(a.Name, true); err != nil {
					return err
				}
			}
			return nil
		case "join":
			j, err := parseJoin(d.Args)
			if err != nil {
				return err
			}
			f.Join = j
			return nil
		}
	}
	return errors.New("unknown directive")
}

func (f *Field) flag(name string) error {
	switch name {
	case "primary_key":
		f.PrimaryKey = true
	case "sortable":
		f.Sortable = true
	case "filterable":
		f.Filterable = true
	case "fulltext":
		f.Fulltext = true
	case "exact":
		f.Exact = true
	case "non_db":
		f.NonDB = true
	case "use_target_models":
		f.UseTargetModels = true
	case "join":
		f.Join = &Join{One: true, All: true}
	default:
		return errors.New("unknown flag")
	}
	return nil
}

func (f *Field) keyValue(key, value string) error {
	switch key {
	case "on_create":
		f.OnCreate = value
	case "on_update":
		f.OnUpdate = value
	case "validate":
		f.Validate = value
	case "create_model", "update_model", "list_model", "one_model":
		include, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s wants a boolean", key)
		}
		return f.exclude(key[:len(key)-len("_model")], !include)
	default:
		return errors.New("unknown key")
	}
	return nil
}

func (f *Field) exclude(variant string, v bool) error {
	switch variant {
	case "create":
		f.ExcludeCreate = v
	case "update":
		f.ExcludeUpdate = v
	case "list":
		f.ExcludeList = v
	case "one":
		f.ExcludeOne = v
	default:
		return fmt.Errorf("unknown model variant %q", variant)
	}
	return nil
}

// parseJoin builds a Join from group arguments. Any invalid argument
// discards the whole group.
func parseJoin(args []Directive) (*Join, error) {
	j := &Join{}
	for _, a := range args {
		switch {
		case a.Kind == Flag && a.Name == "one":
			j.One = true
		case a.Kind == Flag && a.Name == "all":
			j.All = true
		case a.Kind == KeyValue && a.Name == "depth":
			n, err := strconv.Atoi(a.Value)
			if err != nil {
				return nil, fmt.Errorf("join depth %q is not a number", a.Value)
			}
			j.Depth, j.HasDepth = n, true
		case a.Kind == KeyValue && a.Name == "relation":
			j.Relation = a.Value
		case a.Kind == List && a.Name == "filterable":
			j.Filterable = a.List
		case a.Kind == List && a.Name == "sortable":
			j.Sortable = a.List
		case a.Kind == KeyValue && a.Name == "filterable":
			j.Filterable = []string{a.Value}
		case a.Kind == KeyValue && a.Name == "sortable":
			j.Sortable = []string{a.Value}
		default:
			return nil, fmt.Errorf("join: unknown argument %q", a.Name)
		}
	}
	if !j.One && !j.All {
		j.One, j.All = true, true
	}
	return j, nil
}
