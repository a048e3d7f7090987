// Package kconfig loads the rules file that tunes how traces are joined.
//
// A rules file carries the manual repository overrides and, optionally, the
// rule that extracts a repository name from a producer path. YAML and HCL
// are accepted; the format is chosen by file extension.
//
// YAML:
//
//	repo_segment: 6
//	overrides:
//	  my-repo-name: mapping-target
//
// HCL:
//
//	repo_pattern = "^/src/git/[^/]+/(?P<repo>[^/]+)/"
//
//	override "my-repo-name" {
//	  deployment_unit = "mapping-target"
//	}
package kconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/birdayz/ktopo/kreconcile"
	"github.com/birdayz/ktopo/ktrace"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for rules files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported rules file format")

// Rules models a rules file.
type Rules struct {
	// Overrides maps producer repositories to deployment units.
	Overrides map[string]string `yaml:"overrides"`
	// RepoSegment is the path segment holding the repository name. Zero
	// selects ktrace.DefaultRepoSegment.
	RepoSegment int `yaml:"repo_segment"`
	// RepoPattern, when set, replaces RepoSegment with a regular expression.
	RepoPattern string `yaml:"repo_pattern"`
}

type hclRules struct {
	RepoSegment int           `hcl:"repo_segment,optional"`
	RepoPattern string        `hcl:"repo_pattern,optional"`
	Overrides   []hclOverride `hcl:"override,block"`
}

type hclOverride struct {
	Repo           string `hcl:"repo,label"`
	DeploymentUnit string `hcl:"deployment_unit"`
}

// Default returns the rules used without a rules file: no overrides and
// the default repository segment.
func Default() *Rules {
	return &Rules{Overrides: map[string]string{}}
}

// Load reads and validates the rules file at path. An empty path yields
// Default.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default(), nil
	}

	var (
		rules *Rules
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		rules, err = loadYAML(path)
	case ".hcl":
		rules, err = loadHCL(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

func loadYAML(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rules := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rules); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if rules.Overrides == nil {
		rules.Overrides = map[string]string{}
	}
	return rules, nil
}

func loadHCL(path string) (*Rules, error) {
	var raw hclRules
	if err := hclsimple.DecodeFile(path, nil, &raw); err != nil {
		return nil, err
	}

	rules := Default()
	rules.RepoSegment = raw.RepoSegment
	rules.RepoPattern = raw.RepoPattern

	var errs error
	for _, o := range raw.Overrides {
		if _, dup := rules.Overrides[o.Repo]; dup {
			errs = multierr.Append(errs, fmt.Errorf("override %q declared twice", o.Repo))
			continue
		}
		rules.Overrides[o.Repo] = o.DeploymentUnit
	}
	return rules, errs
}

// Validate reports every problem of r at once.
func (r *Rules) Validate() error {
	var errs error
	if r.RepoSegment < 0 {
		errs = multierr.Append(errs, fmt.Errorf("repo_segment must not be negative, got %d", r.RepoSegment))
	}
	if r.RepoSegment != 0 && r.RepoPattern != "" {
		errs = multierr.Append(errs, errors.New("repo_segment and repo_pattern are mutually exclusive"))
	}
	if r.RepoPattern != "" {
		if _, err := ktrace.NewPatternExtractor(r.RepoPattern); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for repo, unit := range r.Overrides {
		if strings.TrimSpace(repo) == "" {
			errs = multierr.Append(errs, errors.New("override with empty repository name"))
		}
		if strings.TrimSpace(unit) == "" {
			errs = multierr.Append(errs, fmt.Errorf("override %q has an empty deployment unit", repo))
		}
	}
	return errs
}

// Extractor builds the repository extractor described by r.
func (r *Rules) Extractor() (ktrace.RepoExtractor, error) {
	if r.RepoPattern != "" {
		extract, err := ktrace.NewPatternExtractor(r.RepoPattern)
		if err != nil {
			return nil, err
		}
		return extract, nil
	}
	if r.RepoSegment != 0 {
		return ktrace.SegmentExtractor{Index: r.RepoSegment}, nil
	}
	return ktrace.DefaultRepoExtractor(), nil
}

// OverrideTable returns a copy of the overrides for the reconciler.
func (r *Rules) OverrideTable() kreconcile.Overrides {
	out := make(kreconcile.Overrides, len(r.Overrides))
	for repo, unit := range r.Overrides {
		out[repo] = unit
	}
	return out
}
