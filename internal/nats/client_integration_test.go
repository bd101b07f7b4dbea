package nats

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/saviobatista/launch-dashboard/internal/testutils"
	"github.com/saviobatista/launch-dashboard/internal/types"
	"github.com/testcontainers/testcontainers-go"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupNATS(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := natscontainer.Run(ctx, "nats:2.10-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server is ready"),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start NATS container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate NATS container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get NATS connection string: %v", err)
	}
	return url
}

func TestNATSClient_Integration_PublishAndSubscribe(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, err := New(setupNATS(t))
	if err != nil {
		t.Fatalf("Failed to create NATS client: %v", err)
	}
	defer client.Close()

	var (
		mu       sync.Mutex
		received []*types.SelectionEvent
	)
	err = client.SubscribeSelections(func(event *types.SelectionEvent) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	const count = 5
	for i := 0; i < count; i++ {
		event := testutils.MockSelectionEvent("correlation", fmt.Sprintf("SITE-%d", i))
		if err := client.PublishSelection(event); err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	err = testutils.WaitForCondition(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == count
	}, 5*time.Second)
	if err != nil {
		t.Fatalf("Expected %d events: %v", count, err)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, event := range received {
		if want := fmt.Sprintf("SITE-%d", i); event.Site != want {
			t.Errorf("Event %d: expected site %s, got %s", i, want, event.Site)
		}
	}
}

func TestNATSClient_Integration_StreamAlreadyExists(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	url := setupNATS(t)
	first, err := New(url)
	if err != nil {
		t.Fatalf("Failed to create first client: %v", err)
	}
	defer first.Close()

	second, err := New(url)
	if err != nil {
		t.Fatalf("Second client should reuse the existing stream: %v", err)
	}
	second.Close()
}
