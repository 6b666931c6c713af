// Package attr parses crud directives.
//
// Field directives live in the `crud` struct tag, entity directives in
// //crud: doc comment lines. Both share one grammar of comma separated
// items, each of which is one of:
//
//	flag                  sortable
//	key=value             on_create=time.Now()  validate='required,max=64'
//	key=[list]            filterable=[title,isbn]
//	group(items...)       join(one,all,depth=2,relation=books)
//
// Commas inside parentheses, brackets, braces and quotes do not split
// items, so values may be arbitrary Go expressions. Values may be wrapped
// in single or double quotes.
//
// Parsing is lenient: an item that cannot be parsed is reported as a
// Problem and skipped, so a malformed group yields no configuration
// instead of failing the whole tag. Semantic checks (unknown relation,
// conflicting overrides) happen later, in the generator.
package attr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the syntactic shape of a directive.
type Kind uint8

// Directive kinds.
const (
	Flag Kind = iota + 1
	KeyValue
	List
	Group
)

// Directive is one parsed item.
type Directive struct {
	Kind  Kind
	Name  string
	Value string      // KeyValue
	List  []string    // List
	Args  []Directive // Group
}

// Problem is a recoverable parse failure.
type Problem struct {
	Item string
	Err  error
}

// Error implements the error interface.
func (p Problem) Error() string {
	return fmt.Sprintf("crud directive %q: %v", p.Item, p.Err)
}

// Problems joins problems into a single error, or nil.
func Problems(ps []Problem) error {
	errs := make([]error, len(ps))
	for i, p := range ps {
		errs[i] = p
	}
	return errors.Join(errs...)
}

// Parse parses a comma separated directive list.
func Parse(s string) ([]Directive, []Problem) {
	return parseItems(splitTop(s, isComma))
}

func parseItems(items []string) ([]Directive, []Problem) {
	var (
		out      []Directive
		problems []Problem
	)
	for _, item := range items {
		d, nested, err := parseItem(item)
		problems = append(problems, nested...)
		if err != nil {
			problems = append(problems, Problem{Item: item, Err: err})
			continue
		}
		out = append(out, d)
	}
	return out, problems
}

func parseItem(item string) (Directive, []Problem, error) {
	if i := indexTop(item, '='); i >= 0 {
		key, value := strings.TrimSpace(item[:i]), strings.TrimSpace(item[i+1:])
		if !isIdent(key) {
			return Directive{}, nil, fmt.Errorf("invalid key %q", key)
		}
		if value == "" {
			return Directive{}, nil, fmt.Errorf("missing value for %q", key)
		}
		if strings.HasPrefix(value, "[") {
			if !strings.HasSuffix(value, "]") || !balanced(value) {
				return Directive{}, nil, errors.New("unterminated list")
			}
			var list []string
			for _, v := range splitTop(value[1:len(value)-1], isComma) {
				uv, err := unquote(v)
				if err != nil {
					return Directive{}, nil, err
				}
				list = append(list, uv)
			}
			return Directive{Kind: List, Name: key, List: list}, nil, nil
		}
		if !balanced(value) {
			return Directive{}, nil, errors.New("unbalanced value")
		}
		uv, err := unquote(value)
		if err != nil {
			return Directive{}, nil, err
		}
		return Directive{Kind: KeyValue, Name: key, Value: uv}, nil, nil
	}
	if i := strings.IndexByte(item, '('); i >= 0 {
		name := strings.TrimSpace(item[:i])
		if !isIdent(name) {
			return Directive{}, nil, fmt.Errorf("invalid group name %q", name)
		}
		if !strings.HasSuffix(item, ")") || !balanced(item) {
			return Directive{}, nil, errors.New("malformed group")
		}
		args, problems := parseItems(splitTop(item[i+1:len(item)-1], isComma))
		return Directive{Kind: Group, Name: name, Args: args}, problems, nil
	}
	if !isIdent(item) {
		return Directive{}, nil, errors.New("invalid flag")
	}
	return Directive{Kind: Flag, Name: item}, nil, nil
}

func isComma(c byte) bool { return c == ',' }

func isSpaceOrComma(c byte) bool {
	return c == ',' || c == ' ' || c == '\t'
}

// splitTop splits s on separator bytes that are not nested in brackets or
// quotes. Empty items are dropped.
func splitTop(s string, sep func(byte) bool) []string {
	var (
		out   []string
		depth int
		quote byte
		start int
	)
	flush := func(end int) {
		if item := strings.TrimSpace(s[start:end]); item != "" {
			out = append(out, item)
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case depth == 0 && sep(c):
			flush(i)
			start = i + 1
		}
	}
	flush(len(s))
	return out
}

// indexTop returns the index of the first c outside brackets and quotes.
func indexTop(s string, c byte) int {
	depth, quote := 0, byte(0)
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case quote != 0:
			if ch == '\\' && quote != '`' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == '(' || ch == '[' || ch == '{':
			depth++
		case ch == ')' || ch == ']' || ch == '}':
			depth--
		case depth == 0 && ch == c:
			// "==" and "!=" belong to expressions, not to key=value.
			if i+1 < len(s) && s[i+1] == '=' {
				return -1
			}
			return i
		}
	}
	return -1
}

func balanced(s string) bool {
	var (
		stack []byte
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != opening(c) {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0 && quote == 0
}

func opening(c byte) byte {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	}
	return '{'
}

// unquote strips matching single or double quotes. Unquoted values are
// returned as is.
func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s, nil
	}
	switch {
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return strings.ReplaceAll(s[1:len(s)-1], `\'`, `'`), nil
	case s[0] == '"' && s[len(s)-1] == '"':
		v, err := strconv.Unquote(s)
		if err != nil {
			return "", fmt.Errorf("bad quoted value %s", s)
		}
		return v, nil
	}
	return s, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}
