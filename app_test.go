package ktopo

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/ktopo/kdag"
	"github.com/birdayz/ktopo/kreconcile"
	"github.com/birdayz/ktopo/ktrace"
)

const (
	subscriptionTrace = `[Subscribed Topic(s) for Consumer Group: g1]
orders
[Subscribed Topic(s) for Consumer Group: g2]
payments
`
	producerTrace = `[*] Searching for producers to topic: orders
[!] Found file containing ORDERS: /src/git/org/team/x/svc-a/Publisher.java
[!] Found file containing ORDERS: /src/git/org/team/x/old-name/Publisher.java
[*] Searching for producers to topic: X
`
	deploymentTrace = `[*] Locating service for consumer group ID: g1
/deploy/ansible/services/unit-g1.yml
[*] Locating service for consumer group ID: g2
[*] Locating service for consumer group ID: g3
/deploy/ansible/services/svc-a.yml
`
)

func writeTraces(t *testing.T, subs, producers, deployments string) Sources {
	t.Helper()
	dir := t.TempDir()
	src := Sources{
		Subscriptions: filepath.Join(dir, "subscriptions.txt"),
		Producers:     filepath.Join(dir, "producers.txt"),
		Deployments:   filepath.Join(dir, "deployments.txt"),
	}
	assert.NoError(t, os.WriteFile(src.Subscriptions, []byte(subs), 0o644))
	assert.NoError(t, os.WriteFile(src.Producers, []byte(producers), 0o644))
	assert.NoError(t, os.WriteFile(src.Deployments, []byte(deployments), 0o644))
	return src
}

func TestRun(t *testing.T) {
	t.Run("writes graph and diagnostics", func(t *testing.T) {
		src := writeTraces(t, subscriptionTrace, producerTrace, deploymentTrace)
		out := filepath.Join(t.TempDir(), "graphs", "topology.dot")

		var diag bytes.Buffer
		app := New(
			WithDiagnostics(&diag),
			WithOverrides(kreconcile.Overrides{"old-name": "new-unit"}),
		)
		res, err := app.Run(src, out)
		assert.NoError(t, err)

		want := "digraph D {\n" +
			"\"new-unit\" -> \"orders\"\n" +
			"\"svc-a\" -> \"orders\"\n" +
			"\"orders\" -> \"unit-g1\"\n" +
			"}\n"
		assert.Equal(t, want, res.Graph.DOT())

		written, err := os.ReadFile(out)
		assert.NoError(t, err)
		assert.Equal(t, want, string(written))

		assert.Equal(t, []string{"X"}, res.UnmappedTopics)
		assert.Equal(t, []string{"g2"}, res.UnmappedGroups)
		assert.Equal(t, []string{"svc-a"}, res.Reconciled.Overlap)
		assert.Equal(t, "\nUnmapped producer topics (1):\n  X\n"+
			"\nUnmapped consumer group IDs (1):\n  g2\n"+
			"Consumer group ID \"g2\" is not mapped to any deployment unit, skipping topic \"payments\".\n", diag.String())
	})

	t.Run("without override the repo is skipped once", func(t *testing.T) {
		src := writeTraces(t, subscriptionTrace, producerTrace, deploymentTrace)

		var diag, logs bytes.Buffer
		res, err := New(
			WithDiagnostics(&diag),
			WithLog(slog.New(slog.NewTextHandler(&logs, nil))),
		).Run(src, "")
		assert.NoError(t, err)
		assert.Equal(t, []string{"old-name"}, res.Reconciled.Unresolved)
		assert.Equal(t, []Skip{
			{Kind: SkipProducer, Entity: "old-name", Topic: "orders"},
			{Kind: SkipConsumer, Entity: "g2", Topic: "payments"},
		}, res.Skips)

		assert.Equal(t, 1, strings.Count(diag.String(), "old-name"))
		assert.Contains(t, logs.String(), "Producer repos without deployment unit")
	})

	t.Run("blank lines are dropped with a warning", func(t *testing.T) {
		subs := "[Subscribed Topic(s) for Consumer Group: g1]\norders\n\n"
		deployments := "[*] Locating service for consumer group ID: g1\n\n/deploy/ansible/services/unit-g1.yml\n"
		src := writeTraces(t, subs, producerTrace, deployments)

		var logs bytes.Buffer
		res, err := New(
			WithDiagnostics(NullWriter{}),
			WithLog(slog.New(slog.NewTextHandler(&logs, nil))),
		).Run(src, "")
		assert.NoError(t, err)
		assert.True(t, res.Graph.HasEdge(kdag.Edge{From: "orders", To: "unit-g1", Kind: kdag.EdgeConsume}))

		assert.Equal(t, 2, strings.Count(logs.String(), "Skipped blank lines"))
		assert.Contains(t, logs.String(), "path="+src.Subscriptions)
		assert.Contains(t, logs.String(), "path="+src.Deployments)
	})

	t.Run("custom repo extractor", func(t *testing.T) {
		producers := "[*] Searching for producers to topic: orders\n" +
			"[!] Found file containing ORDERS: /repos/svc-a/Publisher.java\n"
		src := writeTraces(t, subscriptionTrace, producers, deploymentTrace)

		res, err := New(
			WithDiagnostics(NullWriter{}),
			WithRepoExtractor(ktrace.SegmentExtractor{Index: 2}),
		).Run(src, "")
		assert.NoError(t, err)
		assert.Equal(t, 1, len(res.Graph.Edges(kdag.EdgeProduce)))
	})

	t.Run("missing trace", func(t *testing.T) {
		src := writeTraces(t, subscriptionTrace, producerTrace, deploymentTrace)
		src.Deployments = filepath.Join(t.TempDir(), "missing.txt")

		var diag bytes.Buffer
		_, err := New(WithDiagnostics(&diag)).Run(src, "")
		assert.IsError(t, err, os.ErrNotExist)

		assert.Equal(t, "\nUnmapped producer topics (1):\n  X\n", diag.String())
	})

	t.Run("short producer path aborts with line number", func(t *testing.T) {
		producers := "[*] Searching for producers to topic: orders\n" +
			"[!] Found file containing ORDERS: /too/short\n"
		src := writeTraces(t, subscriptionTrace, producers, deploymentTrace)
		out := filepath.Join(t.TempDir(), "topology.dot")

		var diag bytes.Buffer
		_, err := New(WithDiagnostics(&diag)).Run(src, out)
		assert.IsError(t, err, ktrace.ErrPathTooShort)

		var lineErr *ktrace.LineError
		assert.True(t, errors.As(err, &lineErr))
		assert.Equal(t, 2, lineErr.Line)

		assert.Equal(t, "", diag.String())
		_, statErr := os.Stat(out)
		assert.IsError(t, statErr, os.ErrNotExist)
	})
}
