package ktopo

import (
	"io"
	"log/slog"

	"github.com/birdayz/ktopo/kreconcile"
	"github.com/birdayz/ktopo/ktrace"
	"github.com/go-logr/logr"
)

// Option is a function that configures an App
type Option func(*App)

// WithLog sets the logger for the application
var WithLog = func(log *slog.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithLogr routes application logs to a logr.Logger
var WithLogr = func(log logr.Logger) Option {
	return func(a *App) {
		a.log = slog.New(logr.ToSlogHandler(log))
	}
}

// WithDiagnostics sets the writer that receives the unmapped-entity reports
// and skip notices. Defaults to os.Stdout.
var WithDiagnostics = func(w io.Writer) Option {
	return func(a *App) {
		a.diag = w
	}
}

// WithOverrides sets the manual repository to deployment unit overrides
var WithOverrides = func(overrides kreconcile.Overrides) Option {
	return func(a *App) {
		a.overrides = overrides
	}
}

// WithRepoExtractor sets how producer repositories are derived from paths
var WithRepoExtractor = func(extract ktrace.RepoExtractor) Option {
	return func(a *App) {
		a.extract = extract
	}
}

// NullWriter is a writer that discards all data
type NullWriter struct{}

func (NullWriter) Write(p []byte) (int, error) { return len(p), nil }

// NullLogger creates a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
