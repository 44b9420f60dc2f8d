package stream

import (
	"fmt"
	"math"
)

// Demand is the number of additional values a subscriber currently permits a
// publisher to send, or Unlimited. It is a saturating value type: arithmetic
// never wraps, never goes negative, and Unlimited absorbs both addition and
// subtraction.
type Demand uint64

const (
	// None is zero demand: the publisher may not emit.
	None Demand = 0

	// Unlimited permits the publisher to emit freely.
	Unlimited Demand = math.MaxUint64
)

// Exactly returns a finite demand for n values. It panics if n is negative:
// negative demand is a programmer error, not a recoverable condition.
func Exactly(n int) Demand {
	if n < 0 {
		panic(fmt.Sprintf("stream: negative demand %d", n))
	}
	return Demand(n)
}

// Add returns d plus other, saturating at Unlimited.
func (d Demand) Add(other Demand) Demand {
	if d == Unlimited || other == Unlimited {
		return Unlimited
	}
	sum := d + other
	// A wrapped sum or one that lands exactly on the sentinel saturates.
	if sum < d || sum == Unlimited {
		return Unlimited
	}
	return sum
}

// Sub returns d minus other, clamping at None. Unlimited minus anything
// remains Unlimited.
func (d Demand) Sub(other Demand) Demand {
	if d == Unlimited {
		return Unlimited
	}
	if other >= d {
		return None
	}
	return d - other
}

// Positive reports whether at least one value may be emitted.
func (d Demand) Positive() bool {
	return d > None
}

// IsUnlimited reports whether the demand is the Unlimited sentinel.
func (d Demand) IsUnlimited() bool {
	return d == Unlimited
}

// String returns "unlimited" or the decimal count.
func (d Demand) String() string {
	if d == Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", uint64(d))
}
