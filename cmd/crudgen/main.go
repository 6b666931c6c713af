// crudgen generates CRUD services, models and join loaders for Go structs
// annotated with //crud: directives.
//
// Usage:
//
//	crudgen generate ./models
//	crudgen describe ./models
//	crudgen watch ./models
//
// Settings are read from flags, CRUDGEN_* environment variables and an
// optional crudgen.yaml in the working directory, in that order of
// precedence.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/syssam/crudgen/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logErrors(logger.Default(), err)
		stop()
		os.Exit(1)
	}
}

// logErrors logs every error of a joined error on its own line.
func logErrors(log logger.Logger, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			logErrors(log, e)
		}
		return
	}
	log.Error(err.Error())
}
