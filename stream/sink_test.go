package stream

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorRecordsFailure(t *testing.T) {
	col := Collect[int]()
	boom := errors.New("boom")

	col.OnSubscribe(SubscriptionFuncs{}.Build())
	col.OnNext(1)
	col.OnComplete(boom)

	assert.Equal(t, []int{1}, col.Values())
	assert.True(t, col.Completed())
	assert.ErrorIs(t, col.Err(), boom)
}

func TestCollectorValuesReturnsCopy(t *testing.T) {
	col := Collect[int]()
	Just(1, 2, 3).Subscribe(col)

	values := col.Values()
	values[0] = 99
	assert.Equal(t, []int{1, 2, 3}, col.Values())
}

func TestCollectorRequestBeforeSubscribeIsNoop(t *testing.T) {
	col := CollectWith[int](None, None)
	assert.NotPanics(t, func() { col.Request(Exactly(1)) })
	assert.NotPanics(t, func() { col.Cancel() })
}

func TestCollectWithPerValueDemand(t *testing.T) {
	// Initial demand of one plus one granted per value drains everything.
	col := CollectWith[int](Exactly(1), Exactly(1))
	Just(1, 2, 3, 4).Subscribe(col)

	assert.Equal(t, []int{1, 2, 3, 4}, col.Values())
	assert.True(t, col.Completed())
}

func TestEach(t *testing.T) {
	var got []string
	var terminal error
	sentinel := errors.New("sentinel")

	s := Each(func(v string) { got = append(got, v) }, func(err error) { terminal = err })

	s.OnSubscribe(SubscriptionFuncs{}.Build())
	s.OnNext("x")
	s.OnNext("y")
	s.OnComplete(sentinel)

	assert.Equal(t, []string{"x", "y"}, got)
	assert.ErrorIs(t, terminal, sentinel)
}

func TestEachRequestsUnlimited(t *testing.T) {
	var requested Demand
	sub := SubscriptionFuncs{
		RequestFunc: func(d Demand) { requested = d },
	}.Build()

	Each(func(int) {}, nil).OnSubscribe(sub)
	assert.Equal(t, Unlimited, requested)
}

func TestSubscriberFuncsDefaults(t *testing.T) {
	s := SubscriberFuncs[int]{}.Build()

	assert.NotPanics(t, func() {
		s.OnSubscribe(SubscriptionFuncs{}.Build())
		assert.Equal(t, None, s.OnNext(1))
		s.OnComplete(nil)
	})
}

func TestTracedForwardsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	col := Collect[int]()
	Just(1, 2).Subscribe(Traced[int](col, logger, "test-stage"))

	assert.Equal(t, []int{1, 2}, col.Values())
	assert.True(t, col.Completed())

	logged := buf.String()
	assert.Contains(t, logged, "test-stage")
	assert.Contains(t, logged, "subscribed")
	assert.Contains(t, logged, "value delivered")
	assert.Contains(t, logged, "stream completed")
}

func TestTracedNilLoggerPassthrough(t *testing.T) {
	col := Collect[int]()
	assert.Equal(t, Subscriber[int](col), Traced[int](col, nil, "x"))
}
