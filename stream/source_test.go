package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSliceDeliversAgainstDemand(t *testing.T) {
	pub := FromSlice([]int{1, 2, 3, 4, 5})
	col := CollectWith[int](None, None)
	pub.Subscribe(col)

	// Nothing may be emitted before demand is granted.
	assert.Empty(t, col.Values())
	assert.False(t, col.Completed())

	col.Request(Exactly(2))
	assert.Equal(t, []int{1, 2}, col.Values())
	assert.False(t, col.Completed())

	col.Request(Exactly(2))
	assert.Equal(t, []int{1, 2, 3, 4}, col.Values())

	col.Request(Exactly(1))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, col.Values())
	assert.True(t, col.Completed())
	assert.NoError(t, col.Err())
}

func TestFromSliceUnlimited(t *testing.T) {
	col := Collect[string]()
	Just("a", "b", "c").Subscribe(col)

	assert.Equal(t, []string{"a", "b", "c"}, col.Values())
	assert.True(t, col.Completed())
}

func TestFromSliceEmptyCompletesOnFirstRequest(t *testing.T) {
	col := CollectWith[int](None, None)
	FromSlice[int](nil).Subscribe(col)

	assert.False(t, col.Completed())
	col.Request(Exactly(1))
	assert.True(t, col.Completed())
	assert.NoError(t, col.Err())
	assert.Empty(t, col.Values())
}

func TestFromSliceRequestsAccumulate(t *testing.T) {
	var sub Subscription
	var got []int
	s := SubscriberFuncs[int]{
		OnSubscribeFunc: func(x Subscription) { sub = x },
		OnNextFunc: func(v int) Demand {
			got = append(got, v)
			return None
		},
	}.Build()

	FromSlice([]int{10, 20, 30}).Subscribe(s)
	require.NotNil(t, sub)

	// Two requests before any emission happened would accumulate, but here
	// each emission runs synchronously inside Request; still, the second
	// request picks up where the first ran out.
	sub.Request(Exactly(1))
	sub.Request(Exactly(1))
	assert.Equal(t, []int{10, 20}, got)
}

func TestFromSliceReentrantRequest(t *testing.T) {
	// The subscriber requests more demand from inside its own OnNext. The
	// emit loop must fold that demand in rather than recursing.
	var sub Subscription
	var got []int
	completed := false

	s := SubscriberFuncs[int]{
		OnSubscribeFunc: func(x Subscription) { sub = x },
		OnNextFunc: func(v int) Demand {
			got = append(got, v)
			sub.Request(Exactly(1))
			return None
		},
		OnCompleteFunc: func(err error) {
			require.NoError(t, err)
			completed = true
		},
	}.Build()

	FromSlice([]int{1, 2, 3, 4}).Subscribe(s)
	sub.Request(Exactly(1))

	assert.Equal(t, []int{1, 2, 3, 4}, got)
	assert.True(t, completed)
}

func TestFromSliceOnNextReturnGrantsDemand(t *testing.T) {
	// Granting demand via the OnNext return value drains the whole source
	// from a single initial request.
	var got []int
	var sub Subscription
	s := SubscriberFuncs[int]{
		OnSubscribeFunc: func(x Subscription) { sub = x },
		OnNextFunc: func(v int) Demand {
			got = append(got, v)
			return Exactly(1)
		},
	}.Build()

	FromSlice([]int{7, 8, 9}).Subscribe(s)
	sub.Request(Exactly(1))

	assert.Equal(t, []int{7, 8, 9}, got)
}

func TestFromSliceCancelStopsEmission(t *testing.T) {
	var sub Subscription
	var got []int
	completed := false

	s := SubscriberFuncs[int]{
		OnSubscribeFunc: func(x Subscription) { sub = x },
		OnNextFunc: func(v int) Demand {
			got = append(got, v)
			if v == 2 {
				sub.Cancel()
			}
			return Exactly(1)
		},
		OnCompleteFunc: func(error) { completed = true },
	}.Build()

	FromSlice([]int{1, 2, 3, 4}).Subscribe(s)
	sub.Request(Exactly(1))

	assert.Equal(t, []int{1, 2}, got, "no values after cancel")
	assert.False(t, completed, "cancelled stream delivers no completion")

	// Request after cancel is a defined no-op.
	sub.Request(Exactly(10))
	assert.Equal(t, []int{1, 2}, got)

	// Double cancel is a defined no-op.
	assert.NotPanics(t, func() { sub.Cancel() })
}

func TestFromSliceIndependentSubscriptions(t *testing.T) {
	pub := FromSlice([]int{1, 2, 3})

	a := Collect[int]()
	b := CollectWith[int](Exactly(1), None)
	pub.Subscribe(a)
	pub.Subscribe(b)

	assert.Equal(t, []int{1, 2, 3}, a.Values())
	assert.Equal(t, []int{1}, b.Values(), "subscriptions track demand independently")
}

func TestSubscribeNilSubscriberPanics(t *testing.T) {
	assert.Panics(t, func() {
		Just(1).Subscribe(nil)
	})
}

func TestSliceSubscriptionID(t *testing.T) {
	var sub Subscription
	s := SubscriberFuncs[int]{
		OnSubscribeFunc: func(x Subscription) { sub = x },
	}.Build()
	Just(1).Subscribe(s)

	type identified interface{ ID() string }
	id, ok := sub.(identified)
	require.True(t, ok)
	assert.NotEmpty(t, id.ID())
}
