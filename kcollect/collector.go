// Package kcollect builds a subscription trace from a live cluster.
//
// Consumer groups are listed and described through the admin API. A
// group's topics come from the subscriptions its members announced when
// joining, falling back to their assignments. Groups without members are
// reported with the topics they committed offsets for, fetched for all such
// groups in one batched request.
package kcollect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/birdayz/ktopo/ktrace"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kmsg"
	"go.uber.org/multierr"
)

// DefaultBrokers is used when no broker is configured.
const DefaultBrokers = "localhost:9092"

// consumerProtocol is the protocol type of groups managed by consumer
// clients. Other group types (connect, for example) are skipped.
const consumerProtocol = "consumer"

// ErrNoGroups is returned when the cluster has no matching consumer group.
var ErrNoGroups = errors.New("no consumer groups found")

// Admin is the subset of *kadm.Client used by the Collector.
type Admin interface {
	ListGroups(ctx context.Context, filterStates ...string) (kadm.ListedGroups, error)
	DescribeGroups(ctx context.Context, groups ...string) (kadm.DescribedGroups, error)
	FetchManyOffsets(ctx context.Context, groups ...string) kadm.FetchOffsetsResponses
}

// Option configures a Collector.
type Option func(*Collector)

// WithLog sets the logger of the collector.
var WithLog = func(log *slog.Logger) Option {
	return func(c *Collector) {
		c.log = log
	}
}

// WithGroups restricts collection to the named groups. Without it every
// group of the cluster is collected.
var WithGroups = func(groups ...string) Option {
	return func(c *Collector) {
		c.groups = append(c.groups, groups...)
	}
}

// Collector queries consumer group subscriptions.
type Collector struct {
	admin  Admin
	groups []string
	log    *slog.Logger
}

// New returns a Collector reading from admin.
func New(admin Admin, opts ...Option) *Collector {
	c := &Collector{
		admin: admin,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns the subscriptions of all selected consumer groups. Groups
// are ordered by ID, topics are deduplicated and sorted. Groups that resolve
// to no topic are left out.
func (c *Collector) Collect(ctx context.Context) (*ktrace.Subscriptions, error) {
	groups, err := c.groupIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	described, err := c.admin.DescribeGroups(ctx, groups...)
	if err != nil {
		return nil, fmt.Errorf("describe groups: %w", err)
	}

	var (
		errs       error
		consumers  []kadm.DescribedGroup
		memberless []string
		topics     = make(map[string][]string)
	)
	for _, group := range described.Sorted() {
		if group.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("describe group %s: %w", group.Group, group.Err))
			continue
		}
		if group.ProtocolType != "" && group.ProtocolType != consumerProtocol {
			c.log.Debug("Skipping non-consumer group", "group", group.Group, "protocol_type", group.ProtocolType)
			continue
		}
		consumers = append(consumers, group)
		if len(group.Members) == 0 {
			memberless = append(memberless, group.Group)
			continue
		}
		topics[group.Group] = memberTopics(group.Members)
	}

	if len(memberless) > 0 {
		for _, fetched := range c.admin.FetchManyOffsets(ctx, memberless...) {
			if fetched.Err != nil {
				errs = multierr.Append(errs, fmt.Errorf("fetch offsets of group %s: %w", fetched.Group, fetched.Err))
				continue
			}
			committed := make([]string, 0, len(fetched.Fetched))
			for topic := range fetched.Fetched {
				committed = append(committed, topic)
			}
			topics[fetched.Group] = dedupSorted(committed)
		}
	}
	if errs != nil {
		return nil, errs
	}

	subs := ktrace.NewSubscriptions()
	for _, group := range consumers {
		groupTopics := topics[group.Group]
		if len(groupTopics) == 0 {
			c.log.Info("Consumer group has no topics", "group", group.Group, "state", group.State)
			continue
		}
		for _, topic := range groupTopics {
			subs.Add(group.Group, topic)
		}
		c.log.Debug("Collected consumer group", "group", group.Group, "state", group.State, "topics", len(groupTopics))
	}
	return subs, nil
}

func (c *Collector) groupIDs(ctx context.Context) ([]string, error) {
	if len(c.groups) > 0 {
		return dedupSorted(c.groups), nil
	}
	listed, err := c.admin.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return listed.Groups(), nil
}

func memberTopics(members []kadm.DescribedGroupMember) []string {
	var topics []string
	for _, m := range members {
		meta, _ := m.Join.AsConsumer()
		assigned, _ := m.Assigned.AsConsumer()
		topics = append(topics, consumerTopics(meta, assigned)...)
	}
	return dedupSorted(topics)
}

// consumerTopics returns the topics a member subscribed to, or the topics
// it was assigned if the subscription is unknown.
func consumerTopics(meta *kmsg.ConsumerMemberMetadata, assigned *kmsg.ConsumerMemberAssignment) []string {
	if meta != nil && len(meta.Topics) > 0 {
		return meta.Topics
	}
	if assigned == nil {
		return nil
	}
	topics := make([]string, 0, len(assigned.Topics))
	for _, t := range assigned.Topics {
		topics = append(topics, t.Topic)
	}
	return topics
}

func dedupSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
