package ktrace

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultRepoSegment is the index of the repository directory in a producer
// path, counting the empty segment before the leading slash.
const DefaultRepoSegment = 6

// RepoExtractor derives a producer repository name from a file path.
type RepoExtractor interface {
	ExtractRepo(path string) (string, error)
}

// DefaultRepoExtractor returns the positional extractor used when no rule is
// configured.
func DefaultRepoExtractor() RepoExtractor {
	return SegmentExtractor{Index: DefaultRepoSegment}
}

// SegmentExtractor takes the path segment at a fixed index. Paths are split
// on "/".
type SegmentExtractor struct {
	Index int
}

func (e SegmentExtractor) ExtractRepo(path string) (string, error) {
	segments := strings.Split(path, "/")
	if e.Index < 0 || e.Index >= len(segments) {
		return "", fmt.Errorf("%w: %q has %d segments, repository index is %d",
			ErrPathTooShort, path, len(segments), e.Index)
	}
	return segments[e.Index], nil
}

// PatternExtractor matches a path against a regular expression. The
// repository name is the capture group named "repo", or the first capture
// group if there is none with that name.
type PatternExtractor struct {
	re    *regexp.Regexp
	group int
}

// NewPatternExtractor compiles expr. It must contain at least one capture
// group.
func NewPatternExtractor(expr string) (*PatternExtractor, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile repository pattern: %w", err)
	}
	if re.NumSubexp() == 0 {
		return nil, fmt.Errorf("repository pattern %q has no capture group", expr)
	}

	group := 1
	if idx := re.SubexpIndex("repo"); idx > 0 {
		group = idx
	}
	return &PatternExtractor{re: re, group: group}, nil
}

func (e *PatternExtractor) ExtractRepo(path string) (string, error) {
	m := e.re.FindStringSubmatch(path)
	if m == nil || m[e.group] == "" {
		return "", fmt.Errorf("%w: %q does not match %s", ErrNoRepoMatch, path, e.re)
	}
	return m[e.group], nil
}

func (e *PatternExtractor) String() string {
	return e.re.String()
}
