package ktrace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// maxLineSize bounds a single trace line. Producer traces carry full file
// paths, which comfortably fit.
const maxLineSize = 1 << 20

var (
	// ErrPathTooShort is returned when a producer path has no segment at the
	// configured repository index.
	ErrPathTooShort = errors.New("path has too few segments")
	// ErrNoRepoMatch is returned when a producer path does not match the
	// configured repository pattern.
	ErrNoRepoMatch = errors.New("path does not match repository pattern")
	// ErrMalformedLine is returned for a marker line without a colon.
	ErrMalformedLine = errors.New("malformed trace line")
)

// LineError annotates a parse failure with its 1-based line number.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// eachLine calls fn for every line of r. Line terminators are stripped.
func eachLine(r io.Reader, fn func(n int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := fn(lineNum, scanner.Text()); err != nil {
			return &LineError{Line: lineNum, Err: err}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read trace: %w", err)
	}
	return nil
}

// afterFirstColon returns the text between the first and the second colon
// of line, trimmed.
func afterFirstColon(line string) (string, error) {
	fields := strings.Split(line, ":")
	if len(fields) < 2 {
		return "", fmt.Errorf("%w: no colon in %q", ErrMalformedLine, line)
	}
	return strings.TrimSpace(fields[1]), nil
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// readFile opens path, hands it to parse and closes it again before
// returning. Close errors are folded into the returned error.
func readFile[T any](path string, parse func(io.Reader) (T, error)) (v T, err error) {
	f, err := os.Open(path)
	if err != nil {
		return v, fmt.Errorf("open trace: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	v, err = parse(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// groupIndex is a multimap from group ID to values which remembers the
// order in which groups were first seen.
type groupIndex struct {
	order  []string
	values map[string][]string
	blank  int
}

func newGroupIndex() groupIndex {
	return groupIndex{values: make(map[string][]string)}
}

func (g *groupIndex) add(group, value string) {
	if _, ok := g.values[group]; !ok {
		g.order = append(g.order, group)
	}
	g.values[group] = append(g.values[group], value)
}

func (g *groupIndex) get(group string) []string {
	values := g.values[group]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Groups returns the group IDs in the order they were first seen.
func (g *groupIndex) Groups() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Has reports whether group has at least one value.
func (g *groupIndex) Has(group string) bool {
	_, ok := g.values[group]
	return ok
}

// BlankLines returns how many blank payload lines the parser dropped.
func (g *groupIndex) BlankLines() int {
	return g.blank
}

// Len returns the number of groups.
func (g *groupIndex) Len() int {
	return len(g.order)
}

// difference returns the members of all that are not groups of g, sorted.
func (g *groupIndex) difference(all map[string]struct{}) []string {
	var out []string
	for id := range all {
		if !g.Has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
