package main

import (
	"errors"
	"flag"
	"io"

	"github.com/birdayz/ktopo"
	"github.com/birdayz/ktopo/kconfig"
	"github.com/birdayz/ktopo/pkg/log"
	"github.com/go-logr/zerologr"
)

func runGraph(stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		printUsage(stdout)
		fs.PrintDefaults()
	}
	rulesPath := fs.String("rules", "", "Rules file (.yaml, .yml or .hcl) with repository overrides and extraction rule.")
	logLevel := fs.String("log-level", "info", "Log level: 'debug', 'info', 'warn' or 'error'.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageError(err)
	}
	if fs.NArg() < 3 || fs.NArg() > 4 {
		printUsage(stdout)
		return nil
	}

	logger, err := log.New(stderr, *logLevel)
	if err != nil {
		return usageError(err)
	}

	rules, err := kconfig.Load(*rulesPath)
	if err != nil {
		return err
	}
	extract, err := rules.Extractor()
	if err != nil {
		return err
	}

	app := ktopo.New(
		ktopo.WithLogr(zerologr.New(logger).WithName("ktopo")),
		ktopo.WithDiagnostics(stdout),
		ktopo.WithOverrides(rules.OverrideTable()),
		ktopo.WithRepoExtractor(extract),
	)

	src := ktopo.Sources{
		Subscriptions: fs.Arg(0),
		Producers:     fs.Arg(1),
		Deployments:   fs.Arg(2),
	}
	_, err = app.Run(src, fs.Arg(3))
	return err
}
