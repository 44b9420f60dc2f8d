package buffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/pushstream/stream"
	"github.com/c360/pushstream/testutil"
)

// A hostile overflow factory that pushes more values into the already-full
// buffer from inside the overflow handler. The recursion guard must refuse
// the nested values instead of looping.
func TestOverflowFactoryReentrancy(t *testing.T) {
	errBoom := errors.New("boom")

	pub := testutil.NewScriptedPublisher[int]()

	factoryCalls := 0
	buf, err := New(pub, 1, ByRequest, ErrorOnFull(func() error {
		factoryCalls++
		pub.Push(98)
		pub.Push(99)
		return errBoom
	}))
	require.NoError(t, err)

	sub := testutil.NewRecordingSubscriber[int](stream.None, stream.None)
	buf.Subscribe(sub)

	pub.Push(1)
	pub.Push(2)

	assert.Equal(t, 1, factoryCalls, "nested overflows must not re-run the factory")
	assert.Equal(t, int64(2), buf.Statistics().OverflowReentries())

	sub.Request(stream.Unlimited)
	assert.Equal(t, []int{1}, sub.Received())
	require.True(t, sub.Completed())
	assert.Equal(t, 1, sub.Completions())
	assert.ErrorIs(t, sub.Err(), errBoom)
}

// The drop callback runs outside the buffer's lock, so it may legally call
// back into the pipeline.
func TestDropCallbackMayReenter(t *testing.T) {
	pub := testutil.NewScriptedPublisher[int]()

	var sub *testutil.RecordingSubscriber[int]
	buf, err := New(pub, 1, ByRequest, DropNewest,
		WithDropCallback[int](func(int) {
			sub.Request(stream.Exactly(1))
		}),
	)
	require.NoError(t, err)

	sub = testutil.NewRecordingSubscriber[int](stream.None, stream.None)
	buf.Subscribe(sub)

	pub.Push(1)
	pub.Push(2)

	// The drop of 2 requested one credit, which released the queued 1.
	assert.Equal(t, []int{1}, sub.Received())
}

// A subscriber that cancels from inside OnNext must stop delivery at that
// value even when more demand and more queued values remain.
func TestCancelFromInsideOnNext(t *testing.T) {
	pub := testutil.NewScriptedPublisher[int]()
	buf, err := New(pub, 3, ByRequest, DropNewest)
	require.NoError(t, err)

	sub := testutil.NewRecordingSubscriber[int](stream.None, stream.None)
	sub.OnNextFunc = func(int) {
		sub.Cancel()
	}
	buf.Subscribe(sub)

	pub.Push(1)
	pub.Push(2)
	pub.Push(3)

	sub.Request(stream.Unlimited)
	assert.Equal(t, []int{1}, sub.Received())
	assert.Equal(t, 1, pub.CancelCount())
	assert.False(t, sub.Completed())
}

// A subscriber that requests more demand from inside OnNext must not
// deadlock or recurse; the outer drain loop absorbs the folded-in demand.
func TestRequestFromInsideOnNext(t *testing.T) {
	pub := testutil.NewScriptedPublisher[int]()
	buf, err := New(pub, 3, ByRequest, DropNewest)
	require.NoError(t, err)

	sub := testutil.NewRecordingSubscriber[int](stream.None, stream.None)
	sub.OnNextFunc = func(int) {
		sub.Request(stream.Exactly(1))
	}
	buf.Subscribe(sub)

	pub.Push(1)
	pub.Push(2)
	pub.Push(3)

	sub.Request(stream.Exactly(1))
	assert.Equal(t, []int{1, 2, 3}, sub.Received())
}
