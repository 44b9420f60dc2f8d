package natsbridge

import (
	stderrors "errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/pushstream/errors"
	"github.com/c360/pushstream/stream"
	"github.com/c360/pushstream/testutil"
)

// stubConsumer substitutes the JetStream pull consumer so the fetch loop can
// be driven without a server. Only Fetch is exercised by the loop.
type stubConsumer struct {
	jetstream.Consumer
	fetch func(batch int) (jetstream.MessageBatch, error)
}

func (c *stubConsumer) Fetch(batch int, _ ...jetstream.FetchOpt) (jetstream.MessageBatch, error) {
	return c.fetch(batch)
}

type stubBatch struct {
	msgs chan jetstream.Msg
	err  error
}

func (b *stubBatch) Messages() <-chan jetstream.Msg { return b.msgs }
func (b *stubBatch) Error() error                   { return b.err }

func emptyBatch() *stubBatch {
	b := &stubBatch{msgs: make(chan jetstream.Msg)}
	close(b.msgs)
	return b
}

func newStubSource(c jetstream.Consumer) *Source {
	cfg := DefaultConfig()
	cfg.Stream = "orders"
	cfg.Subject = "orders.created"
	return &Source{
		cfg:      cfg,
		logger:   slog.New(slog.DiscardHandler),
		consumer: c,
	}
}

func TestSourceCloseWaitsForInflightFetch(t *testing.T) {
	fetchStarted := make(chan struct{})
	release := make(chan struct{})
	var fetches atomic.Int32

	consumer := &stubConsumer{fetch: func(int) (jetstream.MessageBatch, error) {
		if fetches.Add(1) == 1 {
			close(fetchStarted)
			<-release
		}
		return emptyBatch(), nil
	}}

	src := newStubSource(consumer)
	sub := testutil.NewRecordingSubscriber[[]byte](stream.Exactly(1), stream.None)
	src.Subscribe(sub)

	<-fetchStarted

	closed := make(chan error, 1)
	go func() { closed <- src.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while a fetch was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the fetch finished")
	}
}

func TestSourceFetchErrorFailsSubscriber(t *testing.T) {
	boom := stderrors.New("boom")
	consumer := &stubConsumer{fetch: func(int) (jetstream.MessageBatch, error) {
		return nil, boom
	}}

	src := newStubSource(consumer)
	sub := testutil.NewRecordingSubscriber[[]byte](stream.Exactly(1), stream.None)
	src.Subscribe(sub)

	require.Eventually(t, sub.Completed, time.Second, 10*time.Millisecond)
	assert.True(t, stderrors.Is(sub.Err(), boom))
	assert.True(t, cerrors.IsTransient(sub.Err()))
	assert.Equal(t, 1, sub.Completions())

	// The loop already exited with the failure, so Close must not block.
	require.NoError(t, src.Close())
}
