package stream

import "log/slog"

// Traced wraps a subscriber so every protocol event it receives is logged
// through the given slog logger at debug level before being forwarded. The
// stage name labels the log entries. A nil logger returns next unwrapped.
func Traced[T any](next Subscriber[T], logger *slog.Logger, stage string) Subscriber[T] {
	if logger == nil {
		return next
	}
	return &tracedSubscriber[T]{next: next, logger: logger, stage: stage}
}

type tracedSubscriber[T any] struct {
	next   Subscriber[T]
	logger *slog.Logger
	stage  string
}

func (t *tracedSubscriber[T]) OnSubscribe(sub Subscription) {
	t.logger.Debug("subscribed", "stage", t.stage)
	t.next.OnSubscribe(&tracedSubscription{sub: sub, logger: t.logger, stage: t.stage})
}

func (t *tracedSubscriber[T]) OnNext(value T) Demand {
	granted := t.next.OnNext(value)
	t.logger.Debug("value delivered", "stage", t.stage, "granted", granted.String())
	return granted
}

func (t *tracedSubscriber[T]) OnComplete(err error) {
	if err != nil {
		t.logger.Debug("stream failed", "stage", t.stage, "error", err)
	} else {
		t.logger.Debug("stream completed", "stage", t.stage)
	}
	t.next.OnComplete(err)
}

type tracedSubscription struct {
	sub    Subscription
	logger *slog.Logger
	stage  string
}

func (t *tracedSubscription) Request(d Demand) {
	t.logger.Debug("demand requested", "stage", t.stage, "demand", d.String())
	t.sub.Request(d)
}

func (t *tracedSubscription) Cancel() {
	t.logger.Debug("subscription cancelled", "stage", t.stage)
	t.sub.Cancel()
}
