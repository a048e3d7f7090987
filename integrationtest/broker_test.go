package integrationtest

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/twmb/franz-go/pkg/kadm"
)

const redpandaImage = "docker.vectorized.io/vectorized/redpanda:latest"

// startBroker starts a single node Redpanda for t and returns its seed
// brokers. The container is terminated when t ends.
func startBroker(t *testing.T) []string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping broker test in short mode")
	}

	ctx := context.Background()
	port, err := getFreePort()
	if err != nil {
		t.Fatalf("pick kafka port: %v", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      redpandaImage,
			WaitingFor: wait.ForLog("Successfully started Redpanda!"),
			User:       "root:root",
			Cmd: []string{
				"redpanda", "start",
				"--smp", "1",
				"--reserve-memory", "0M",
				"--overprovisioned",
				"--node-id", "0",
				"--kafka-addr", fmt.Sprintf("OUTSIDE://0.0.0.0:%d", port),
			},
			ExposedPorts: []string{fmt.Sprintf("%d:%d/tcp", port, port)},
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redpanda: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate redpanda: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redpanda host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(fmt.Sprintf("%d", port)))
	if err != nil {
		t.Fatalf("redpanda port: %v", err)
	}
	return []string{fmt.Sprintf("%s:%d", host, mapped.Int())}
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// waitForGroup polls until group is stable.
func waitForGroup(acl *kadm.Client, group string) error {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		res, err := acl.DescribeGroups(context.Background(), group)
		if err != nil {
			return err
		}
		if g, ok := res[group]; ok && g.State == "Stable" {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("group %s did not become stable", group)
}
