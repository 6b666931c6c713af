package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/crudgen"
)

// Parse builds a Query from list request parameters:
//
//	filter    JSON object of conditions, e.g. {"q":"earth","id":[1,2],"year_gte":1960,"books.title":"Dune"}
//	q         alias of filter.q
//	sort      ["name","DESC"] or [["name","DESC"],["id","ASC"]]
//	sort_by   comma-separated columns, with order giving one direction or one per column
//	range     [start,end], both inclusive
//	page      1-based page number, with per_page
//
// Only columns registered in meta are accepted; anything else is rejected
// with an *Error.
func Parse(meta *crudgen.EntityMeta, values url.Values) (*Query, error) {
	q := &Query{}
	if err := q.parseFilter(meta, values); err != nil {
		return nil, err
	}
	if err := q.parseSort(meta, values); err != nil {
		return nil, err
	}
	if err := q.parseWindow(values); err != nil {
		return nil, err
	}
	if err := q.Validate(meta); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Query) parseFilter(meta *crudgen.EntityMeta, values url.Values) error {
	q.Search = strings.TrimSpace(values.Get("q"))
	raw := strings.TrimSpace(values.Get("filter"))
	if raw == "" {
		return nil
	}
	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return &Error{Param: "filter", Err: fmt.Errorf("expected a JSON object: %w", err)}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		v, err := normalize(obj[key])
		if err != nil {
			return &Error{Param: "filter", Key: key, Err: err}
		}
		if key == "q" {
			s, ok := v.(string)
			if !ok {
				return &Error{Param: "filter", Key: key, Err: fmt.Errorf("search term must be a string, got %T", v)}
			}
			q.Search = strings.TrimSpace(s)
			continue
		}
		c, err := parseKey(meta, key)
		if err != nil {
			return err
		}
		c.Value = v
		q.Conditions = append(q.Conditions, c)
	}
	return nil
}

// parseKey resolves a filter key to a column and operator. A suffix is
// recognized only when the rest of the key is a known column.
func parseKey(meta *crudgen.EntityMeta, key string) (Condition, error) {
	for _, s := range suffixes {
		if base, ok := strings.CutSuffix(key, s.suffix); ok {
			if c, ok := resolveFilter(meta, base); ok {
				c.Op = s.op
				return c, nil
			}
		}
	}
	if c, ok := resolveFilter(meta, key); ok {
		c.Op = OpEq
		return c, nil
	}
	return Condition{}, &Error{Param: "filter", Key: key, Err: errors.New("unknown or non-filterable column")}
}

func resolveFilter(meta *crudgen.EntityMeta, name string) (Condition, bool) {
	if rel, col, ok := strings.Cut(name, "."); ok {
		j, ok := meta.Join(rel)
		if !ok || !j.CanFilter(col) {
			return Condition{}, false
		}
		return Condition{Join: rel, Column: col}, true
	}
	if name == "id" {
		name = meta.PrimaryKey
	}
	if !filterable(meta, name) {
		return Condition{}, false
	}
	return Condition{Column: name}, true
}

// normalize converts decoded JSON to condition values: integral numbers
// become int64, other numbers float64. Arrays hold scalars only.
func normalize(v any) (any, error) {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", v)
		}
		return f, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			switch e.(type) {
			case []any, map[string]any, nil:
				return nil, errors.New("lists may only hold strings, numbers and booleans")
			}
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		return nil, errors.New("nested objects are not supported")
	default:
		return v, nil
	}
}

func (q *Query) parseSort(meta *crudgen.EntityMeta, values url.Values) error {
	raw := strings.TrimSpace(values.Get("sort"))
	sortBy := strings.TrimSpace(values.Get("sort_by"))
	switch {
	case raw != "" && sortBy != "":
		return &Error{Param: "sort", Err: errors.New("sort and sort_by are mutually exclusive")}
	case raw != "":
		pairs, err := parseSortJSON(raw)
		if err != nil {
			return &Error{Param: "sort", Err: err}
		}
		for _, p := range pairs {
			s, err := newSort(meta, p[0], p[1])
			if err != nil {
				return err
			}
			q.Sort = append(q.Sort, s)
		}
	case sortBy != "":
		cols := strings.Split(sortBy, ",")
		dirs := strings.Split(values.Get("order"), ",")
		if len(dirs) != 1 && len(dirs) != len(cols) {
			return &Error{Param: "order", Err: fmt.Errorf("%d directions for %d sort columns", len(dirs), len(cols))}
		}
		for i, col := range cols {
			dir := dirs[0]
			if len(dirs) > 1 {
				dir = dirs[i]
			}
			if strings.TrimSpace(dir) == "" {
				dir = string(Asc)
			}
			s, err := newSort(meta, strings.TrimSpace(col), dir)
			if err != nil {
				return err
			}
			q.Sort = append(q.Sort, s)
		}
	}
	return nil
}

// parseSortJSON accepts one ["col","DIR"] pair or a list of pairs. Pairs
// of any other length are rejected.
func parseSortJSON(raw string) ([][2]string, error) {
	var pair []string
	if err := strictUnmarshal(raw, &pair); err == nil {
		p, err := sortPair(pair)
		if err != nil {
			return nil, err
		}
		return [][2]string{p}, nil
	}
	var pairs [][]string
	if err := strictUnmarshal(raw, &pairs); err != nil {
		return nil, errors.New(`expected ["column","ASC|DESC"] or a list of such pairs`)
	}
	out := make([][2]string, 0, len(pairs))
	for _, pair := range pairs {
		p, err := sortPair(pair)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func sortPair(p []string) ([2]string, error) {
	if len(p) != 2 {
		return [2]string{}, fmt.Errorf(`sort pair has %d elements, expected ["column","ASC|DESC"]`, len(p))
	}
	return [2]string{p[0], p[1]}, nil
}

func newSort(meta *crudgen.EntityMeta, field, dir string) (Sort, error) {
	d, err := ParseDirection(dir)
	if err != nil {
		return Sort{}, &Error{Param: "sort", Key: field, Err: err}
	}
	s := Sort{Column: field, Direction: d}
	if rel, col, ok := strings.Cut(field, "."); ok {
		s.Join, s.Column = rel, col
	} else if field == "id" && !meta.CanSort("id") {
		s.Column = meta.PrimaryKey
	}
	if err := validSort(meta, s.Join, s.Column); err != nil {
		return Sort{}, err
	}
	return s, nil
}

func (q *Query) parseWindow(values url.Values) error {
	rng := strings.TrimSpace(values.Get("range"))
	page, perPage := strings.TrimSpace(values.Get("page")), strings.TrimSpace(values.Get("per_page"))
	if rng != "" && (page != "" || perPage != "") {
		return &Error{Param: "range", Err: errors.New("range and page/per_page are mutually exclusive")}
	}
	q.Limit = DefaultLimit
	switch {
	case rng != "":
		var bounds []int
		if err := strictUnmarshal(rng, &bounds); err != nil || len(bounds) != 2 {
			return &Error{Param: "range", Err: errors.New("expected [start,end]")}
		}
		start, end := bounds[0], bounds[1]
		if start < 0 || end < start {
			return &Error{Param: "range", Err: fmt.Errorf("invalid window [%d,%d]", start, end)}
		}
		q.Offset, q.Limit = start, end-start+1
	case page != "" || perPage != "":
		n, size := 1, DefaultLimit
		var err error
		if page != "" {
			if n, err = strconv.Atoi(page); err != nil || n < 1 {
				return &Error{Param: "page", Err: fmt.Errorf("expected a positive number, got %q", page)}
			}
		}
		if perPage != "" {
			if size, err = strconv.Atoi(perPage); err != nil || size < 1 {
				return &Error{Param: "per_page", Err: fmt.Errorf("expected a positive number, got %q", perPage)}
			}
		}
		size = min(size, MaxLimit)
		q.Offset, q.Limit = (n-1)*size, size
	}
	q.Limit = min(q.Limit, MaxLimit)
	return nil
}

func strictUnmarshal(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}
