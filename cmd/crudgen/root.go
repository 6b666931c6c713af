package main

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syssam/crudgen/compiler"
	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/internal/logger"
)

// settings are the resolved CLI settings.
type settings struct {
	Patterns   []string `mapstructure:"patterns"`
	Dir        string   `mapstructure:"dir"`
	Header     string   `mapstructure:"header"`
	MaxDepth   int      `mapstructure:"max_depth"`
	Suffix     string   `mapstructure:"suffix"`
	Workers    int      `mapstructure:"workers"`
	BuildFlags []string `mapstructure:"build_flags"`
	DryRun     bool     `mapstructure:"dry_run"`
	LogLevel   string   `mapstructure:"log_level"`
	LogJSON    bool     `mapstructure:"log_json"`
}

// app carries the state shared by subcommands.
type app struct {
	v   *viper.Viper
	s   settings
	log logger.Logger
}

// flag names keyed by their settings key.
var flagKeys = map[string]string{
	"dir":         "dir",
	"header":      "header",
	"max_depth":   "max-depth",
	"suffix":      "suffix",
	"workers":     "workers",
	"build_flags": "build-flags",
	"dry_run":     "dry-run",
	"log_level":   "log-level",
	"log_json":    "log-json",
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crudgen",
		Short:         "Generate CRUD services for annotated Go structs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./crudgen.yaml)")
	flags.String("dir", "", "directory package patterns are resolved in")
	flags.String("header", "", "comment added below the generated-code marker")
	flags.Int("max-depth", gen.DefaultMaxDepth, "maximum join recursion depth")
	flags.String("suffix", gen.DefaultSuffix, "generated file name suffix")
	flags.Int("workers", runtime.GOMAXPROCS(0), "parallel file writers")
	flags.StringSlice("build-flags", nil, "flags passed to the go command when loading packages")
	flags.Bool("dry-run", false, "render files without writing them")
	flags.String("log-level", string(logger.InfoLevel), "log level: debug, info, warn, error or disabled")
	flags.Bool("log-json", false, "log as JSON")

	root.AddCommand(
		a.generateCmd(),
		a.describeCmd(),
		a.watchCmd(),
	)
	return root
}

// init resolves the settings and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	if err := a.bind(cmd.Flags()); err != nil {
		return err
	}
	if err := a.v.Unmarshal(&a.s); err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	level, err := logger.ParseLevel(a.s.LogLevel)
	if err != nil {
		return err
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.JSON = a.s.LogJSON
	cfg.Output = cmd.ErrOrStderr()
	a.log = logger.Init(cfg)
	if f := a.v.ConfigFileUsed(); f != "" {
		a.log.Debug("config loaded", "file", f)
	}
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), a.log))
	return nil
}

// bind layers flags over CRUDGEN_* variables over the config file.
func (a *app) bind(flags *pflag.FlagSet) error {
	v := a.v
	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	v.SetEnvPrefix("CRUDGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	file, _ := flags.GetString("config")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("crudgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// patterns returns the command arguments, or the configured patterns, or
// the current package.
func (a *app) patterns(args []string) []string {
	switch {
	case len(args) > 0:
		return args
	case len(a.s.Patterns) > 0:
		return a.s.Patterns
	}
	return []string{"."}
}

// config builds the generator config from the settings.
func (a *app) config() (*gen.Config, error) {
	opts := []gen.Option{
		gen.WithHeader(a.s.Header),
		gen.WithDryRun(a.s.DryRun),
		gen.WithBuildFlags(a.s.BuildFlags...),
	}
	if a.s.MaxDepth != 0 {
		opts = append(opts, gen.WithMaxDepth(a.s.MaxDepth))
	}
	if a.s.Suffix != "" {
		opts = append(opts, gen.WithSuffix(a.s.Suffix))
	}
	if a.s.Workers != 0 {
		opts = append(opts, gen.WithWorkers(a.s.Workers))
	}
	return gen.NewConfig(opts...)
}

func (a *app) compilerOptions() []compiler.Option {
	return []compiler.Option{compiler.Dir(a.s.Dir), compiler.Logger(a.log)}
}

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [patterns]",
		Short: "Write <entity>_crud.go for every entity of the matching packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			res, err := compiler.Generate(cmd.Context(), a.patterns(args), cfg, a.compilerOptions()...)
			if err != nil {
				return err
			}
			a.log.Info("generation finished",
				"files", res.Metrics.FilesGenerated,
				"bytes", res.Metrics.TotalBytes,
				"render", res.Metrics.RenderTime,
				"format", res.Metrics.FormatTime)
			return nil
		},
	}
}
