package natsbridge

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/c360/pushstream/buffer"
	"github.com/c360/pushstream/stream"
)

func startNATSContainerWithJS(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	req := testcontainers.ContainerRequest{
		Image:        "nats:latest",
		ExposedPorts: []string{"4222/tcp", "8222/tcp"},
		WaitingFor:   wait.ForListeningPort("4222/tcp"),
		Cmd:          []string{"-js", "-m", "8222"}, // Enable JetStream and monitoring
	}

	natsContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := natsContainer.Host(ctx)
	require.NoError(t, err)

	port, err := natsContainer.MappedPort(ctx, "4222")
	require.NoError(t, err)

	natsURL := fmt.Sprintf("nats://%s:%s", host, port.Port())

	// Wait for NATS to be fully ready
	time.Sleep(200 * time.Millisecond)

	return natsContainer, natsURL
}

// seedStream creates a JetStream stream and publishes count messages.
func seedStream(ctx context.Context, t *testing.T, url, streamName, subject string, count int) {
	conn, err := nats.Connect(url)
	require.NoError(t, err)
	defer conn.Close()

	js, err := jetstream.New(conn)
	require.NoError(t, err)

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subject},
	})
	require.NoError(t, err)

	for i := 0; i < count; i++ {
		_, err := js.Publish(ctx, subject, fmt.Appendf(nil, "value-%d", i))
		require.NoError(t, err)
	}
}

// TestIntegration_SourceDeliversOnDemand verifies that the source pulls
// exactly as many messages as the subscriber demands.
func TestIntegration_SourceDeliversOnDemand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	natsContainer, natsURL := startNATSContainerWithJS(ctx, t)
	defer natsContainer.Terminate(ctx)

	seedStream(ctx, t, natsURL, "EVENTS", "events.raw", 10)

	cfg := DefaultConfig()
	cfg.URL = natsURL
	cfg.Name = "demand-test"
	cfg.Stream = "EVENTS"
	cfg.Subject = "events.raw"
	cfg.FetchTimeout = Duration(time.Second)

	src, err := NewSource(ctx, cfg)
	require.NoError(t, err)
	defer src.Close()

	collector := stream.CollectWith[[]byte](stream.Exactly(3), stream.None)
	src.Subscribe(collector)

	require.Eventually(t, func() bool {
		return len(collector.Values()) == 3
	}, 5*time.Second, 50*time.Millisecond, "expected exactly the demanded values")

	// No further demand, no further delivery.
	time.Sleep(500 * time.Millisecond)
	assert.Len(t, collector.Values(), 3)

	// More demand releases more values.
	collector.Request(stream.Exactly(2))
	require.Eventually(t, func() bool {
		return len(collector.Values()) == 5
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, []byte("value-0"), collector.Values()[0])
	assert.Equal(t, []byte("value-4"), collector.Values()[4])
}

// TestIntegration_SourceBufferSinkPipeline runs the full path: JetStream
// source through a buffer into a core NATS sink.
func TestIntegration_SourceBufferSinkPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	natsContainer, natsURL := startNATSContainerWithJS(ctx, t)
	defer natsContainer.Terminate(ctx)

	seedStream(ctx, t, natsURL, "PIPE", "pipe.in", 20)

	// Subscribe to the sink's output subject before the pipeline starts.
	outConn, err := nats.Connect(natsURL)
	require.NoError(t, err)
	defer outConn.Close()

	received := make(chan []byte, 64)
	outSub, err := outConn.Subscribe("pipe.out", func(msg *nats.Msg) {
		received <- msg.Data
	})
	require.NoError(t, err)
	defer outSub.Unsubscribe()

	cfg := DefaultConfig()
	cfg.URL = natsURL
	cfg.Name = "pipeline-test"
	cfg.Stream = "PIPE"
	cfg.Subject = "pipe.in"
	cfg.PublishSubject = "pipe.out"
	cfg.FetchTimeout = Duration(time.Second)
	cfg.SinkWindow = 4

	src, err := NewSource(ctx, cfg)
	require.NoError(t, err)
	defer src.Close()

	buf, err := buffer.New[[]byte](src, 8, buffer.KeepFull, buffer.DropOldest)
	require.NoError(t, err)

	sink, err := NewSink(cfg)
	require.NoError(t, err)
	defer sink.Close()

	buf.Subscribe(sink)

	got := 0
	deadline := time.After(10 * time.Second)
	for got < 20 {
		select {
		case <-received:
			got++
		case <-deadline:
			t.Fatalf("timed out after %d of 20 messages", got)
		}
	}

	assert.GreaterOrEqual(t, buf.Statistics().Delivered(), int64(20))
}
