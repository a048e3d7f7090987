package ktopo

import (
	"fmt"

	"github.com/birdayz/ktopo/kdag"
	"github.com/birdayz/ktopo/kreconcile"
	"github.com/birdayz/ktopo/ktrace"
)

// SkipKind tells which side of the graph a Skip belongs to.
type SkipKind int

const (
	// SkipProducer marks a producer repository without deployment unit.
	SkipProducer SkipKind = iota
	// SkipConsumer marks a consumer group without deployment unit.
	SkipConsumer
)

// Skip is a (producer, topic) or (group, topic) pair left out of the graph.
type Skip struct {
	Kind SkipKind
	// Entity is the producer repository or the consumer group ID.
	Entity string
	Topic  string
}

func (s Skip) String() string {
	if s.Kind == SkipProducer {
		return fmt.Sprintf("Producer repo %q is not mapped to any deployment unit, skipping topic %q.", s.Entity, s.Topic)
	}
	return fmt.Sprintf("Consumer group ID %q is not mapped to any deployment unit, skipping topic %q.", s.Entity, s.Topic)
}

// Emit builds the dependency graph.
//
// Every producer repository with a mapping contributes an edge from its
// deployment unit to each topic it publishes to. Every subscription of a
// group with deployment units contributes an edge from the topic to each of
// those units. Pairs that cannot be resolved are returned as skips, one per
// pair, in a stable order: producers by topic and repository, then
// consumers by group in trace order.
func Emit(producers ktrace.TopicProducers, mapping kreconcile.Mapping, subs *ktrace.Subscriptions, deployments *ktrace.Deployments) (*kdag.Graph, []Skip) {
	g := kdag.NewGraph()
	var skips []Skip

	for _, topic := range producers.Topics() {
		for _, repo := range producers[topic].Sorted() {
			unit, ok := mapping.Lookup(repo)
			if !ok {
				skips = append(skips, Skip{Kind: SkipProducer, Entity: repo, Topic: topic})
				continue
			}
			g.AddProduce(unit, topic)
		}
	}

	for _, group := range subs.Groups() {
		units := deployments.Units(group)
		for _, topic := range subs.Topics(group) {
			if len(units) == 0 {
				skips = append(skips, Skip{Kind: SkipConsumer, Entity: group, Topic: topic})
				continue
			}
			for _, unit := range units {
				g.AddConsume(topic, unit)
			}
		}
	}

	return g, skips
}
