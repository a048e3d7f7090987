package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/birdayz/ktopo/kcollect"
	"github.com/birdayz/ktopo/ktrace"
	"github.com/birdayz/ktopo/pkg/log"
	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// groupList collects repeated -group flags.
type groupList []string

func (g *groupList) String() string {
	return strings.Join(*g, ",")
}

func (g *groupList) Set(v string) error {
	*g = append(*g, v)
	return nil
}

func runCollect(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		printUsage(stdout)
		fs.PrintDefaults()
	}
	brokers := fs.String("brokers", "", "Comma separated seed brokers. Defaults to $"+kcollect.BrokersEnv+", then "+kcollect.DefaultBrokers+".")
	logLevel := fs.String("log-level", "info", "Log level: 'debug', 'info', 'warn' or 'error'.")
	var groups groupList
	fs.Var(&groups, "group", "Consumer group to collect. Repeatable. Defaults to all groups.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageError(err)
	}
	if fs.NArg() > 1 {
		printUsage(stdout)
		return nil
	}

	logger, err := log.New(stderr, *logLevel)
	if err != nil {
		return usageError(err)
	}

	seeds := kcollect.Brokers(*brokers)
	admin, err := kcollect.Dial(seeds)
	if err != nil {
		return err
	}
	defer admin.Close()

	collector := kcollect.New(admin,
		kcollect.WithLog(slog.New(logr.ToSlogHandler(zerologr.New(logger).WithName("collect")))),
		kcollect.WithGroups(groups...),
	)
	logger.Info().Strs("brokers", seeds).Msg("Collecting consumer group subscriptions")

	subs, err := collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	logger.Info().Int("groups", subs.Len()).Msg("Collected consumer group subscriptions")

	if fs.NArg() == 0 {
		return ktrace.WriteSubscriptions(stdout, subs)
	}
	return writeSubscriptionsFile(fs.Arg(0), subs)
}

func writeSubscriptionsFile(path string, subs *ktrace.Subscriptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subscription trace: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	return ktrace.WriteSubscriptions(f, subs)
}
