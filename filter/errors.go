package filter

import (
	"fmt"

	"github.com/syssam/crudgen"
)

// Error is a rejected query parameter. It unwraps to a
// *crudgen.ValidationError, so errors.Is(err, crudgen.ErrValidation) holds.
type Error struct {
	Param string // query parameter: filter, sort, range, page, ...
	Key   string // offending key within the parameter, if any
	Err   error
}

// Error returns the error string.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("filter: invalid %s %q: %v", e.Param, e.Key, e.Err)
	}
	return fmt.Sprintf("filter: invalid %s: %v", e.Param, e.Err)
}

// Unwrap returns the validation error of the parameter.
func (e *Error) Unwrap() error {
	name := e.Param
	if e.Key != "" {
		name = e.Key
	}
	return crudgen.NewValidationError(name, e.Err)
}
