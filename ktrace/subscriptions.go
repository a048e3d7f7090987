package ktrace

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// SubscriptionHeaderPrefix starts every group header of a subscription trace.
// The header is closed by "]".
const SubscriptionHeaderPrefix = "[Subscribed Topic(s) for Consumer Group: "

// Subscriptions maps consumer group IDs to the topics they subscribe to.
// Topics keep trace order and may repeat.
type Subscriptions struct {
	groupIndex
}

// NewSubscriptions returns an empty Subscriptions.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{groupIndex: newGroupIndex()}
}

// Add appends topic to the subscriptions of group.
func (s *Subscriptions) Add(group, topic string) {
	s.add(group, topic)
}

// Topics returns the topics of group in trace order.
func (s *Subscriptions) Topics(group string) []string {
	return s.get(group)
}

// ParseSubscriptions reads a subscription trace. Each header line starts a
// new group; every following non-blank line until the next header is one
// topic of that group, trimmed of surrounding whitespace. Blank lines are
// dropped and counted in BlankLines.
func ParseSubscriptions(r io.Reader) (*Subscriptions, error) {
	subs := NewSubscriptions()
	group := ""

	err := eachLine(r, func(_ int, line string) error {
		switch {
		case strings.HasPrefix(line, "["):
			group = parseGroupHeader(line)
		case isBlank(line):
			subs.blank++
		default:
			subs.Add(group, strings.TrimSpace(line))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// ReadSubscriptionsFile parses the subscription trace stored at path.
func ReadSubscriptionsFile(path string) (*Subscriptions, error) {
	return readFile(path, ParseSubscriptions)
}

// WriteSubscriptions writes subs in the format read by ParseSubscriptions.
func WriteSubscriptions(w io.Writer, subs *Subscriptions) error {
	bw := bufio.NewWriter(w)
	for _, group := range subs.Groups() {
		if _, err := fmt.Fprintf(bw, "%s%s]\n", SubscriptionHeaderPrefix, group); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, topic := range subs.Topics(group) {
			if _, err := fmt.Fprintln(bw, topic); err != nil {
				return fmt.Errorf("write topic: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush subscriptions: %w", err)
	}
	return nil
}

func parseGroupHeader(line string) string {
	header := strings.TrimSuffix(strings.TrimRight(line, " \t\r"), "]")
	if id, ok := strings.CutPrefix(header, SubscriptionHeaderPrefix); ok {
		return id
	}
	// Differently worded header: the ID follows the first colon.
	if _, id, ok := strings.Cut(header, ":"); ok {
		return strings.TrimSpace(id)
	}
	return strings.TrimPrefix(header, "[")
}
