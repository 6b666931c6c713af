package crudgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
)

func TestParseHookKey(t *testing.T) {
	tests := []struct {
		in      string
		want    crudgen.HookKey
		wantErr string
	}{
		{in: "create::one::pre", want: crudgen.HookKey{Op: crudgen.OpCreate, Card: crudgen.One, Phase: crudgen.Pre}},
		{in: "read::many::body", want: crudgen.HookKey{Op: crudgen.OpRead, Card: crudgen.Many, Phase: crudgen.Body}},
		{in: " delete::many::post ", want: crudgen.HookKey{Op: crudgen.OpDelete, Card: crudgen.Many, Phase: crudgen.Post}},
		{in: "update::one", wantErr: "want op::cardinality::phase"},
		{in: "upsert::one::pre", wantErr: "unknown operation"},
		{in: "create::few::pre", wantErr: "unknown cardinality"},
		{in: "create::one::around", wantErr: "unknown phase"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := crudgen.ParseHookKey(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHookKeyString(t *testing.T) {
	k := crudgen.HookKey{Op: crudgen.OpUpdate, Card: crudgen.One, Phase: crudgen.Post}
	assert.Equal(t, "update::one::post", k.String())
	assert.Equal(t, crudgen.ActionUpdate, k.Action())
	assert.Equal(t, "update::one", k.Action().String())

	parsed, err := crudgen.ParseHookKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)
}

func TestLegacyOverrides(t *testing.T) {
	assert.Equal(t, crudgen.ActionGet, crudgen.LegacyOverrides["fn_get_one"])
	assert.Equal(t, crudgen.ActionDeleteMany, crudgen.LegacyOverrides["fn_delete_many"])
	assert.Len(t, crudgen.LegacyOverrides, 6)
}
