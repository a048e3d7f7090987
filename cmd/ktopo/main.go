package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/zerologr"
)

// ExitError carries the exit code for a failed invocation.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

const usage = `ktopo - derive a topic dependency graph from consumer and producer traces.

Usage:
  ktopo run [-rules FILE] [-log-level LEVEL] <consumer-subscription-trace> <producer-trace> <consumer-group-mapping-trace> [output-path]
  ktopo collect [-brokers LIST] [-group GROUP ...] [-log-level LEVEL] [output-path]

Commands:
  run      Join the three traces and write the graph in DOT format.
  collect  Write a consumer subscription trace for the groups of a live cluster.
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

func main() {
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run dispatches to the sub-command named by args[0]. A missing or unknown
// sub-command prints the usage and succeeds.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	if len(args) == 0 {
		printUsage(stdout)
		return nil
	}

	switch args[0] {
	case "run":
		return runGraph(stdout, stderr, args[1:])
	case "collect":
		return runCollect(ctx, stdout, stderr, args[1:])
	default:
		printUsage(stdout)
		return nil
	}
}
