package crudgen_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := crudgen.NewNotFoundError("author", nil)
		assert.Equal(t, "crudgen: author not found", err.Error())

		err = crudgen.NewNotFoundError("author", 42)
		assert.Equal(t, "crudgen: author not found (id=42)", err.Error())
		assert.Equal(t, 42, err.ID())
		assert.Equal(t, "author", err.Label())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := crudgen.NewNotFoundError("book", 1)
		assert.True(t, errors.Is(err, crudgen.ErrNotFound))
		assert.True(t, crudgen.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, crudgen.IsNotFound(crudgen.ErrNotFound))
		assert.False(t, crudgen.IsNotFound(errors.New("other error")))
		assert.False(t, crudgen.IsNotFound(nil))
	})
}

func TestValidationError(t *testing.T) {
	err := crudgen.Invalidf("name", "cannot be null")
	assert.Equal(t, `crudgen: validation failed for field "name": cannot be null`, err.Error())
	assert.True(t, errors.Is(err, crudgen.ErrValidation))
	assert.True(t, crudgen.IsValidationError(fmt.Errorf("update: %w", err)))
	assert.False(t, crudgen.IsValidationError(nil))

	anonymous := crudgen.NewValidationError("", errors.New("bad input"))
	assert.Equal(t, "crudgen: validation failed: bad input", anonymous.Error())
}

func TestConstraintError(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: authors.name")
	err := crudgen.NewConstraintError("unique", cause)
	require.Error(t, err)
	assert.True(t, crudgen.IsConstraintError(err))
	assert.True(t, errors.Is(err, crudgen.ErrConstraint))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, crudgen.IsConstraintError(cause))
}

func TestWrappedOperationErrors(t *testing.T) {
	cause := errors.New("connection reset")

	q := crudgen.NewQueryError("author", "list", cause)
	assert.Equal(t, "crudgen: querying author (list): connection reset", q.Error())
	assert.ErrorIs(t, q, cause)

	m := crudgen.NewMutationError("author", "create", cause)
	assert.Equal(t, "crudgen: create author: connection reset", m.Error())
	assert.ErrorIs(t, m, cause)

	r := &crudgen.RollbackError{Err: cause}
	assert.ErrorIs(t, r, cause)
}
