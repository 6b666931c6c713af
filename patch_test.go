package crudgen_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
)

type patchInput struct {
	Name crudgen.Patch[string]  `json:"name,omitzero"`
	Bio  crudgen.Patch[*string] `json:"bio,omitzero"`
	Age  crudgen.Patch[int]     `json:"age,omitzero"`
}

func TestPatchDecode(t *testing.T) {
	var in patchInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"ada","bio":null}`), &in))

	assert.True(t, in.Name.IsSet())
	assert.Equal(t, "ada", in.Name.Value())
	assert.True(t, in.Bio.IsNull())
	assert.True(t, in.Age.IsUnset())

	v, ok := in.Age.Get()
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestPatchDecodeError(t *testing.T) {
	var in patchInput
	err := json.Unmarshal([]byte(`{"age":"old"}`), &in)
	require.Error(t, err)
	assert.True(t, in.Age.IsUnset())
}

func TestPatchEncode(t *testing.T) {
	in := patchInput{
		Name: crudgen.Set("ada"),
		Bio:  crudgen.Null[*string](),
	}
	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada","bio":null}`, string(out))
}

func TestPatchAccessors(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		p := crudgen.Set(3)
		require.NotNil(t, p.Ptr())
		assert.Equal(t, 3, *p.Ptr())
		assert.Equal(t, "3", p.String())
		assert.False(t, p.IsZero())
	})

	t.Run("null", func(t *testing.T) {
		p := crudgen.Null[int]()
		assert.Nil(t, p.Ptr())
		assert.Equal(t, "null", p.String())
		assert.False(t, p.IsZero())
	})

	t.Run("unset", func(t *testing.T) {
		var p crudgen.Patch[int]
		assert.Nil(t, p.Ptr())
		assert.Equal(t, "unset", p.String())
		assert.True(t, p.IsZero())
	})

	t.Run("Ptr helper", func(t *testing.T) {
		p := crudgen.Ptr("x")
		assert.Equal(t, "x", *p)
	})
}
