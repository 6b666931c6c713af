package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/crudgen/compiler"
	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/internal/logger"
)

// debounceDelay batches the events of one save.
const debounceDelay = 200 * time.Millisecond

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [patterns]",
		Short: "Regenerate whenever a source file of the matching packages changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			return a.watch(cmd.Context(), a.patterns(args), cfg)
		},
	}
}

// watch generates once, then regenerates after every burst of changes to
// the entity packages until ctx is done. Failed regenerations are logged.
func (a *app) watch(ctx context.Context, patterns []string, cfg *gen.Config) error {
	log := logger.FromContext(ctx)
	res, err := compiler.Generate(ctx, patterns, cfg, a.compilerOptions()...)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]bool)
	for _, g := range res.Graphs {
		dirs[g.Package.Dir] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	log.Info("watching for changes", "directories", len(dirs))

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info("stopping watcher")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSource(event, cfg.Suffix) {
				continue
			}
			log.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "error", err)
		case <-trigger:
			if _, err := compiler.Generate(ctx, patterns, cfg, a.compilerOptions()...); err != nil {
				logErrors(log, err)
			}
		}
	}
}

// isSource reports whether event touches a hand-written Go file. Generated
// files and tests are ignored.
func isSource(event fsnotify.Event, suffix string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasSuffix(name, suffix)
}
