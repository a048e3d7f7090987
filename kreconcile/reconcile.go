// Package kreconcile joins producer repositories with deployment units.
//
// Producer traces name source repositories while consumer traces name
// deployment units. Most services use the same name for both, so the join
// starts from the exact-name overlap of the two sets. Overrides cover
// repositories whose deployment unit is named differently.
package kreconcile

import (
	"sort"

	"github.com/birdayz/ktopo/ktrace"
	"golang.org/x/exp/maps"
)

// Overrides maps a producer repository to the deployment unit that runs
// it. Entries take precedence over exact-name matches.
type Overrides map[string]string

// Mapping maps a producer repository to exactly one deployment unit.
type Mapping map[string]string

// Lookup returns the deployment unit of repo.
func (m Mapping) Lookup(repo string) (string, bool) {
	unit, ok := m[repo]
	return unit, ok
}

// Result is the outcome of Reconcile.
type Result struct {
	Mapping Mapping
	// Overlap lists repositories whose name equals a deployment unit,
	// ascending.
	Overlap []string
	// Overridden lists repositories mapped by an override, ascending.
	Overridden []string
	// Unresolved lists repositories with no deployment unit, ascending.
	Unresolved []string
}

// Reconcile derives the repository to deployment unit mapping. It does not
// modify its arguments and returns the same result for the same input.
func Reconcile(producers ktrace.TopicProducers, deployments *ktrace.Deployments, overrides Overrides) *Result {
	repos := producers.Repos()
	units := deployments.AllUnits()

	mapping := make(Mapping, len(repos)+len(overrides))
	var overlap []string
	for repo := range repos {
		if _, ok := units[repo]; ok {
			mapping[repo] = repo
			overlap = append(overlap, repo)
		}
	}
	for repo, unit := range overrides {
		mapping[repo] = unit
	}

	var unresolved []string
	for repo := range repos {
		if _, ok := mapping[repo]; !ok {
			unresolved = append(unresolved, repo)
		}
	}

	overridden := maps.Keys(overrides)
	sort.Strings(overlap)
	sort.Strings(overridden)
	sort.Strings(unresolved)

	return &Result{
		Mapping:    mapping,
		Overlap:    overlap,
		Overridden: overridden,
		Unresolved: unresolved,
	}
}
