package kcollect

import (
	"fmt"
	"os"
	"strings"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// BrokersEnv names the environment variable holding the seed brokers.
const BrokersEnv = "KAFKA_BROKERS"

// Brokers splits a comma separated broker list. An empty list falls back to
// $KAFKA_BROKERS, then to DefaultBrokers.
func Brokers(list string) []string {
	if strings.TrimSpace(list) == "" {
		list = os.Getenv(BrokersEnv)
	}
	if strings.TrimSpace(list) == "" {
		list = DefaultBrokers
	}

	var out []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Dial connects an admin client to brokers. Closing the returned client
// also closes the underlying Kafka client.
func Dial(brokers []string, opts ...kgo.Opt) (*kadm.Client, error) {
	client, err := kgo.NewClient(append([]kgo.Opt{kgo.SeedBrokers(brokers...)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return kadm.NewClient(client), nil
}
