package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
)

// debugV is the logr verbosity slog debug records arrive with when bridged
// through logr.ToSlogHandler.
const debugV = 4

// New returns a logger writing to w at the named level. Inside Kubernetes it
// writes JSON, otherwise human readable console output.
//
// At debug level the zerologr verbosity limit is raised so that slog debug
// records routed through logr are written too. The limit is process global.
func New(w io.Writer, level string) (*zerolog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if lvl == zerolog.TraceLevel {
		zerologr.SetMaxV(debugV)
	} else {
		zerologr.SetMaxV(1)
	}

	output := w
	if os.Getenv("KUBERNETES_SERVICE_HOST") == "" {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02T15:04:05.999Z07:00"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	return &logger, nil
}

// debug maps to the trace level; zerologr.New only lifts the local level of
// trace loggers, leaving SetMaxV in control.
func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return zerolog.TraceLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn' or 'error'", level)
	}
}
