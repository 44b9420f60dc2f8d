package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemandAdd(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Demand
		expected Demand
	}{
		{"zero plus zero", None, None, None},
		{"finite plus finite", Exactly(2), Exactly(3), Exactly(5)},
		{"finite plus zero", Exactly(7), None, Exactly(7)},
		{"unlimited plus finite", Unlimited, Exactly(3), Unlimited},
		{"finite plus unlimited", Exactly(3), Unlimited, Unlimited},
		{"unlimited plus unlimited", Unlimited, Unlimited, Unlimited},
		{"saturates instead of wrapping", Unlimited - 1, Exactly(5), Unlimited},
		{"lands exactly on sentinel", Unlimited - 1, Exactly(1), Unlimited},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.a.Add(test.b))
		})
	}
}

func TestDemandSub(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Demand
		expected Demand
	}{
		{"finite minus smaller", Exactly(5), Exactly(2), Exactly(3)},
		{"finite minus equal clamps", Exactly(5), Exactly(5), None},
		{"finite minus larger clamps", Exactly(2), Exactly(5), None},
		{"unlimited minus finite", Unlimited, Exactly(1000), Unlimited},
		{"unlimited minus unlimited", Unlimited, Unlimited, Unlimited},
		{"finite minus unlimited clamps", Exactly(5), Unlimited, None},
		{"zero minus anything", None, Exactly(1), None},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.a.Sub(test.b))
		})
	}
}

func TestDemandAddSubNeverWraps(t *testing.T) {
	// Exhaustive walk near the saturation boundary: no combination of Add
	// and Sub may produce a value between Unlimited-1 and the sentinel by
	// wrapping.
	base := Unlimited - 3
	for i := 0; i < 8; i++ {
		sum := base.Add(Exactly(i))
		if sum != Unlimited {
			assert.Equal(t, base+Demand(i), sum)
		}
		assert.True(t, sum >= base, "Add must never wrap below its operand")
	}
	for i := 0; i < 8; i++ {
		diff := Exactly(3).Sub(Exactly(i))
		assert.True(t, diff <= Exactly(3), "Sub must never wrap above its operand")
	}
}

func TestExactlyPanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { Exactly(-1) })
	assert.NotPanics(t, func() { Exactly(0) })
}

func TestDemandPredicates(t *testing.T) {
	assert.False(t, None.Positive())
	assert.True(t, Exactly(1).Positive())
	assert.True(t, Unlimited.Positive())

	assert.False(t, Exactly(42).IsUnlimited())
	assert.True(t, Unlimited.IsUnlimited())
}

func TestDemandString(t *testing.T) {
	assert.Equal(t, "0", None.String())
	assert.Equal(t, "12", Exactly(12).String())
	assert.Equal(t, "unlimited", Unlimited.String())
}
