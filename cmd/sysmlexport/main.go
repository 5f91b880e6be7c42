package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/sysmlexport/internal/cli"
	"github.com/matzehuels/sysmlexport/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		code := exitCode(err)
		if code != 130 {
			fmt.Fprintln(os.Stderr, "Error:", errors.UserMessage(err))
		}
		cancel()
		os.Exit(code)
	}
}

// exitCode maps errors to process exit codes: 130 for interrupts, 2 for bad
// input, 1 otherwise.
func exitCode(err error) int {
	if stderrors.Is(err, context.Canceled) {
		return 130 // Standard shell convention for SIGINT
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidModel,
		errors.ErrCodeInvalidConfig, errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound,
		errors.ErrCodeNoStartingNode:
		return 2
	}
	return 1
}
