package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDepth, c.MaxDepth)
	assert.Equal(t, DefaultSuffix, c.Suffix)
	assert.Positive(t, c.Workers)
	assert.False(t, c.DryRun)
}

func TestWithMaxDepth(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{n: 1}, {n: 3}, {n: DefaultMaxDepth},
		{n: 0, wantErr: true}, {n: DefaultMaxDepth + 1, wantErr: true}, {n: -2, wantErr: true},
	}
	for _, tt := range tests {
		c := &Config{}
		err := WithMaxDepth(tt.n)(c)
		if tt.wantErr {
			require.Error(t, err, "depth %d", tt.n)
			assert.True(t, IsConfigError(err))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.n, c.MaxDepth)
		assert.Equal(t, tt.n, c.maxDepth())
	}
}

func TestWithSuffix(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithSuffix(".crud.go")(c))
	assert.Equal(t, ".crud.go", c.suffix())

	for _, bad := range []string{"", "_crud", "_crud_test.go", "/x.go"} {
		assert.Error(t, WithSuffix(bad)(c), bad)
	}
}

func TestWithWorkers(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithWorkers(3)(c))
	assert.Equal(t, 3, c.Workers)
	assert.Error(t, WithWorkers(0)(c))
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(
		WithHeader("// Copyright Example"),
		WithMaxDepth(9),
		WithWorkers(-1),
		WithBuildFlags("-tags", "dev"),
		WithDryRun(true),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxDepth")
	assert.Contains(t, err.Error(), "Workers")
	assert.Equal(t, "// Copyright Example", c.Header)
	assert.Equal(t, []string{"-tags", "dev"}, c.BuildFlags)
	assert.True(t, c.DryRun)
}

func TestNewConfigFailsFast(t *testing.T) {
	_, err := NewConfig(WithSuffix("x"), WithMaxDepth(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Suffix")
	assert.NotContains(t, err.Error(), "MaxDepth")

	assert.Panics(t, func() { MustNewConfig(WithWorkers(0)) })
}

func TestZeroConfigFallbacks(t *testing.T) {
	var c *Config
	assert.Equal(t, DefaultMaxDepth, c.maxDepth())
	assert.Equal(t, DefaultSuffix, c.suffix())
}
