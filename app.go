// Package ktopo derives a topic dependency graph from three text traces:
// consumer group subscriptions, topic producers and consumer group
// deployments. The result is a Graphviz digraph linking producing
// deployment units to topics and topics to consuming deployment units.
package ktopo

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/birdayz/ktopo/internal/dotfile"
	"github.com/birdayz/ktopo/kdag"
	"github.com/birdayz/ktopo/kreconcile"
	"github.com/birdayz/ktopo/ktrace"
)

// Sources names the three trace files a run reads.
type Sources struct {
	// Subscriptions maps consumer groups to topics.
	Subscriptions string
	// Producers maps topics to producer repositories.
	Producers string
	// Deployments maps consumer groups to deployment units.
	Deployments string
}

// App derives topic dependency graphs from traces.
type App struct {
	log       *slog.Logger
	diag      io.Writer
	overrides kreconcile.Overrides
	extract   ktrace.RepoExtractor
}

// Result is the outcome of a run.
type Result struct {
	Graph *kdag.Graph
	// UnmappedTopics lists searched topics without producers, ascending.
	UnmappedTopics []string
	// UnmappedGroups lists located consumer groups without deployment
	// units, ascending.
	UnmappedGroups []string
	Reconciled     *kreconcile.Result
	Skips          []Skip
}

// New creates a new ktopo application.
func New(opts ...Option) *App {
	a := &App{
		log:       NullLogger(),
		diag:      os.Stdout,
		overrides: kreconcile.Overrides{},
		extract:   ktrace.DefaultRepoExtractor(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Run parses the traces of src one after another, joins them and builds the
// graph. Each unmapped-entity report is printed as soon as its trace is
// parsed. Data quality problems are reported on the diagnostics writer and do
// not fail the run. If outPath is not empty the graph is written there.
func (a *App) Run(src Sources, outPath string) (*Result, error) {
	subs, err := ktrace.ReadSubscriptionsFile(src.Subscriptions)
	if err != nil {
		return nil, fmt.Errorf("subscriptions: %w", err)
	}
	a.log.Info("Parsed subscription trace", "path", src.Subscriptions, "groups", subs.Len())
	if subs.Has("") {
		a.log.Warn("Topics before the first group header, keeping them under an empty group ID",
			"path", src.Subscriptions, "topics", len(subs.Topics("")))
	}
	a.warnBlank(src.Subscriptions, subs.BlankLines())

	producers, err := ktrace.ReadProducersFile(src.Producers, a.extract)
	if err != nil {
		return nil, fmt.Errorf("producers: %w", err)
	}
	a.log.Info("Parsed producer trace", "path", src.Producers,
		"topics", len(producers.Producers), "searched", len(producers.Searched))
	if err := a.report("Unmapped producer topics", producers.Unmapped); err != nil {
		return nil, err
	}

	deployments, err := ktrace.ReadDeploymentsFile(src.Deployments)
	if err != nil {
		return nil, fmt.Errorf("deployments: %w", err)
	}
	a.log.Info("Parsed deployment trace", "path", src.Deployments,
		"groups", deployments.Deployments.Len(), "located", len(deployments.Located))
	a.warnBlank(src.Deployments, deployments.Deployments.BlankLines())
	if err := a.report("Unmapped consumer group IDs", deployments.Unmapped); err != nil {
		return nil, err
	}

	reconciled := kreconcile.Reconcile(producers.Producers, deployments.Deployments, a.overrides)
	a.log.Info("Reconciled repositories", "overlap", len(reconciled.Overlap),
		"overridden", len(reconciled.Overridden), "unresolved", len(reconciled.Unresolved))
	if len(reconciled.Unresolved) > 0 {
		a.log.Warn("Producer repos without deployment unit", "repos", reconciled.Unresolved)
	}

	graph, skips := Emit(producers.Producers, reconciled.Mapping, subs, deployments.Deployments)
	for _, s := range skips {
		if _, err := fmt.Fprintln(a.diag, s); err != nil {
			return nil, fmt.Errorf("write diagnostics: %w", err)
		}
	}
	a.log.Info("Built graph", "produce_edges", graph.EdgeCount(kdag.EdgeProduce),
		"consume_edges", graph.EdgeCount(kdag.EdgeConsume), "skipped", len(skips))

	if outPath != "" {
		if err := dotfile.New(outPath).Write(graph); err != nil {
			return nil, err
		}
		a.log.Info("Wrote graph", "path", outPath)
	}

	return &Result{
		Graph:          graph,
		UnmappedTopics: producers.Unmapped,
		UnmappedGroups: deployments.Unmapped,
		Reconciled:     reconciled,
		Skips:          skips,
	}, nil
}

func (a *App) warnBlank(path string, n int) {
	if n > 0 {
		a.log.Warn("Skipped blank lines", "path", path, "lines", n)
	}
}

// report prints a counted, indented list.
func (a *App) report(title string, items []string) error {
	if _, err := fmt.Fprintf(a.diag, "\n%s (%d):\n", title, len(items)); err != nil {
		return fmt.Errorf("write diagnostics: %w", err)
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(a.diag, "  %s\n", item); err != nil {
			return fmt.Errorf("write diagnostics: %w", err)
		}
	}
	return nil
}
