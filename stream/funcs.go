package stream

// SubscriberFuncs assembles a Subscriber from closures, filling in no-op
// defaults for any that are nil. Useful for inline pipeline endpoints where
// a named type would be noise.
type SubscriberFuncs[T any] struct {
	OnSubscribeFunc func(Subscription)
	OnNextFunc      func(T) Demand
	OnCompleteFunc  func(error)
}

// Build returns a Subscriber backed by the funcs.
func (f SubscriberFuncs[T]) Build() Subscriber[T] {
	if f.OnSubscribeFunc == nil {
		f.OnSubscribeFunc = func(Subscription) {}
	}
	if f.OnNextFunc == nil {
		f.OnNextFunc = func(T) Demand { return None }
	}
	if f.OnCompleteFunc == nil {
		f.OnCompleteFunc = func(error) {}
	}
	return &assembledSubscriber[T]{f}
}

type assembledSubscriber[T any] struct {
	f SubscriberFuncs[T]
}

func (s *assembledSubscriber[T]) OnSubscribe(sub Subscription) { s.f.OnSubscribeFunc(sub) }
func (s *assembledSubscriber[T]) OnNext(v T) Demand            { return s.f.OnNextFunc(v) }
func (s *assembledSubscriber[T]) OnComplete(err error)         { s.f.OnCompleteFunc(err) }

// SubscriptionFuncs assembles a Subscription from closures, filling in no-op
// defaults for any that are nil.
type SubscriptionFuncs struct {
	RequestFunc func(Demand)
	CancelFunc  func()
}

// Build returns a Subscription backed by the funcs.
func (f SubscriptionFuncs) Build() Subscription {
	if f.RequestFunc == nil {
		f.RequestFunc = func(Demand) {}
	}
	if f.CancelFunc == nil {
		f.CancelFunc = func() {}
	}
	return &assembledSubscription{f}
}

type assembledSubscription struct {
	f SubscriptionFuncs
}

func (s *assembledSubscription) Request(d Demand) { s.f.RequestFunc(d) }
func (s *assembledSubscription) Cancel()          { s.f.CancelFunc() }
