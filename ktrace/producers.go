package ktrace

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	producerTopicMarker = "Searching for producers to topic"
	producerFileMarker  = "Found file containing"
)

// RepoSet is a set of producer repository names.
type RepoSet map[string]struct{}

// Add inserts repo.
func (s RepoSet) Add(repo string) {
	s[repo] = struct{}{}
}

// Has reports whether repo is in the set.
func (s RepoSet) Has(repo string) bool {
	_, ok := s[repo]
	return ok
}

// Sorted returns the members in ascending order.
func (s RepoSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for repo := range s {
		out = append(out, repo)
	}
	sort.Strings(out)
	return out
}

// TopicProducers maps a topic to the repositories that publish to it. Only
// topics with at least one repository are present.
type TopicProducers map[string]RepoSet

// Add records repo as a producer of topic.
func (tp TopicProducers) Add(topic, repo string) {
	repos, ok := tp[topic]
	if !ok {
		repos = RepoSet{}
		tp[topic] = repos
	}
	repos.Add(repo)
}

// Topics returns the topics in ascending order.
func (tp TopicProducers) Topics() []string {
	out := make([]string, 0, len(tp))
	for topic := range tp {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// Repos returns every repository across all topics.
func (tp TopicProducers) Repos() RepoSet {
	all := RepoSet{}
	for _, repos := range tp {
		for repo := range repos {
			all.Add(repo)
		}
	}
	return all
}

// ProducerTrace is the parsed producer trace.
type ProducerTrace struct {
	Producers TopicProducers
	// Searched holds every topic the trace searched producers for.
	Searched map[string]struct{}
	// Unmapped lists searched topics without any producer, ascending.
	Unmapped []string
}

// ParseProducers reads a producer trace. A topic marker line selects the
// current topic; every file marker line that follows contributes the
// repository extract derives from its path. A nil extract uses
// DefaultRepoExtractor.
func ParseProducers(r io.Reader, extract RepoExtractor) (*ProducerTrace, error) {
	if extract == nil {
		extract = DefaultRepoExtractor()
	}

	trace := &ProducerTrace{
		Producers: TopicProducers{},
		Searched:  map[string]struct{}{},
	}
	topic := ""

	err := eachLine(r, func(_ int, line string) error {
		switch {
		case strings.Contains(line, producerTopicMarker):
			t, err := afterFirstColon(line)
			if err != nil {
				return err
			}
			topic = t
			trace.Searched[topic] = struct{}{}
		case strings.Contains(line, producerFileMarker):
			path, err := afterFirstColon(line)
			if err != nil {
				return err
			}
			repo, err := extract.ExtractRepo(path)
			if err != nil {
				return fmt.Errorf("topic %q: %w", topic, err)
			}
			trace.Producers.Add(topic, repo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for t := range trace.Searched {
		if _, ok := trace.Producers[t]; !ok {
			trace.Unmapped = append(trace.Unmapped, t)
		}
	}
	sort.Strings(trace.Unmapped)

	return trace, nil
}

// ReadProducersFile parses the producer trace stored at path.
func ReadProducersFile(path string, extract RepoExtractor) (*ProducerTrace, error) {
	return readFile(path, func(r io.Reader) (*ProducerTrace, error) {
		return ParseProducers(r, extract)
	})
}
