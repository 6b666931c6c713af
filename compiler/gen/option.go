package gen

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// DefaultMaxDepth is the policy maximum for join recursion. Explicit
// depths above it are capped; joins without an explicit depth use it.
const DefaultMaxDepth = 5

// DefaultSuffix is appended to the snake_case entity name to form the
// generated file name.
const DefaultSuffix = "_crud.go"

// Config holds the generator configuration.
type Config struct {
	// Header is an optional comment block written below the generated-code
	// marker of every file.
	Header string
	// MaxDepth caps join recursion. It defaults to DefaultMaxDepth.
	MaxDepth int
	// Suffix of generated file names.
	Suffix string
	// Workers bounds parallel file emission.
	Workers int
	// BuildFlags are passed to the go command when loading packages.
	BuildFlags []string
	// DryRun renders files without writing them.
	DryRun bool
}

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets an extra header comment.
// The header is added below the generated-code marker of each file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithMaxDepth lowers the join recursion cap. It accepts 1 up to
// DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *Config) error {
		if n < 1 || n > DefaultMaxDepth {
			return NewConfigError("MaxDepth", n, fmt.Sprintf("must be between 1 and %d", DefaultMaxDepth))
		}
		c.MaxDepth = n
		return nil
	}
}

// WithSuffix sets the generated file name suffix, e.g. "_crud.go".
func WithSuffix(suffix string) Option {
	return func(c *Config) error {
		if !strings.HasSuffix(suffix, ".go") || strings.HasSuffix(suffix, "_test.go") || strings.ContainsRune(suffix, '/') {
			return NewConfigError("Suffix", suffix, "must be a non-test .go file suffix")
		}
		c.Suffix = suffix
		return nil
	}
}

// WithWorkers sets the number of parallel file writers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithBuildFlags sets custom build flags for loading entity packages.
func WithBuildFlags(flags ...string) Option {
	return func(c *Config) error {
		c.BuildFlags = append(c.BuildFlags, flags...)
		return nil
	}
}

// WithDryRun renders every file without touching the file system.
func WithDryRun(dry bool) Option {
	return func(c *Config) error {
		c.DryRun = dry
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		MaxDepth: DefaultMaxDepth,
		Suffix:   DefaultSuffix,
		Workers:  runtime.GOMAXPROCS(0),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// maxDepth returns the effective cap, tolerating a zero Config.
func (c *Config) maxDepth() int {
	if c == nil || c.MaxDepth < 1 || c.MaxDepth > DefaultMaxDepth {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

func (c *Config) suffix() string {
	if c == nil || c.Suffix == "" {
		return DefaultSuffix
	}
	return c.Suffix
}
