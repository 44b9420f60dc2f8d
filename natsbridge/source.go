package natsbridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"

	"github.com/c360/pushstream/errors"
	"github.com/c360/pushstream/metric"
	"github.com/c360/pushstream/stream"
)

// Source is a publisher backed by a JetStream pull consumer. Downstream
// demand drives the pull loop: finite demand translates into bounded fetch
// batches, Unlimited demand into a continuous fetch loop. Messages are
// acknowledged after delivery, so an unconsumed message survives a crash
// and is redelivered.
//
// A Source supports a single subscriber.
type Source struct {
	cfg      Config
	logger   *slog.Logger
	metrics  *metric.Metrics
	conn     *nats.Conn
	consumer jetstream.Consumer

	mu         sync.Mutex
	subscribed bool
	closed     bool
	active     *sourceSubscription
}

// NewSource connects to NATS and creates an ephemeral pull consumer on the
// configured stream.
func NewSource(ctx context.Context, cfg Config, options ...Option) (*Source, error) {
	cfg.applyDefaults()
	if err := cfg.ValidateSource(); err != nil {
		return nil, err
	}

	opts := applyBridgeOptions(options...)

	s := &Source{
		cfg:     cfg,
		logger:  opts.logger,
		metrics: opts.metrics,
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name+"-source"),
		nats.Timeout(cfg.ConnectTimeout.Std()),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			s.logger.Warn("nats disconnected", slog.Any("error", err))
			if s.metrics != nil {
				s.metrics.BridgeConnected.Set(0)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			s.logger.Info("nats reconnected")
			if s.metrics != nil {
				s.metrics.BridgeConnected.Set(1)
			}
		}),
	)
	if err != nil {
		return nil, errors.WrapTransient(err, "Source", "NewSource", "connect")
	}
	s.conn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapFatal(err, "Source", "NewSource", "create jetstream context")
	}

	st, err := js.Stream(ctx, cfg.Stream)
	if err != nil {
		conn.Close()
		return nil, errors.WrapInvalid(err, "Source", "NewSource", "lookup stream")
	}

	consumerName := fmt.Sprintf("%s-%s", cfg.Name, uuid.NewString()[:8])
	consumer, err := st.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consumerName,
		FilterSubject: cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		conn.Close()
		return nil, errors.WrapTransient(err, "Source", "NewSource", "create consumer")
	}
	s.consumer = consumer

	if s.metrics != nil {
		s.metrics.BridgeConnected.Set(1)
	}
	s.logger.Info("source connected",
		slog.String("url", cfg.URL),
		slog.String("stream", cfg.Stream),
		slog.String("consumer", consumerName))

	return s, nil
}

// Subscribe attaches the single subscriber. A second subscriber receives
// an immediate failure completion. Panics if sub is nil.
func (s *Source) Subscribe(sub stream.Subscriber[[]byte]) {
	if sub == nil {
		panic("stream: protocol violation: Subscribe called with nil subscriber")
	}

	s.mu.Lock()
	if s.subscribed || s.closed {
		closed := s.closed
		s.mu.Unlock()
		sub.OnSubscribe(stream.SubscriptionFuncs{}.Build())
		if closed {
			sub.OnComplete(errors.ErrAlreadyStopped)
		} else {
			sub.OnComplete(errors.ErrAlreadySubscribed)
		}
		return
	}
	s.subscribed = true

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	ss := &sourceSubscription{
		src:    s,
		sub:    sub,
		ctx:    ctx,
		cancel: cancel,
		g:      g,
	}
	s.active = ss
	s.mu.Unlock()

	sub.OnSubscribe(ss)
}

// Close stops the pull loop, waits for any in-flight fetch to finish, then
// drains the connection. Messages fetched but not yet acknowledged will be
// redelivered to the next consumer.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	active := s.active
	s.mu.Unlock()

	if active != nil {
		active.Cancel()
		if err := active.g.Wait(); err != nil {
			s.logger.Warn("fetch loop exited with error", slog.Any("error", err))
		}
	}

	if s.metrics != nil {
		s.metrics.BridgeConnected.Set(0)
	}
	if s.conn != nil {
		if err := s.conn.Drain(); err != nil {
			return errors.WrapTransient(err, "Source", "Close", "drain connection")
		}
	}
	return nil
}

// sourceSubscription runs the pull loop for one subscriber. Demand
// accounting follows the same rules as any subscription: finite demand is
// consumed one unit per delivered message and replenished by Request calls
// and OnNext return values.
type sourceSubscription struct {
	src    *Source
	sub    stream.Subscriber[[]byte]
	ctx    context.Context
	cancel context.CancelFunc
	g      *errgroup.Group

	mu        sync.Mutex
	demand    stream.Demand
	fetching  bool
	cancelled bool
	done      bool
}

// Request adds demand and starts the fetch loop if it is not running.
func (ss *sourceSubscription) Request(d stream.Demand) {
	ss.mu.Lock()
	if ss.cancelled || ss.done {
		ss.mu.Unlock()
		return
	}
	ss.demand = ss.demand.Add(d)
	start := !ss.fetching && ss.demand.Positive()
	if start {
		ss.fetching = true
	}
	ss.mu.Unlock()

	if start {
		ss.g.Go(ss.fetchLoop)
	}
}

// Cancel stops the pull loop. Idempotent. Fetched but undelivered messages
// are not acknowledged and will be redelivered.
func (ss *sourceSubscription) Cancel() {
	ss.mu.Lock()
	if ss.cancelled {
		ss.mu.Unlock()
		return
	}
	ss.cancelled = true
	ss.mu.Unlock()
	ss.cancel()
}

// fetchLoop pulls batches while demand holds. It exits nil when demand is
// exhausted or the subscription is cancelled, restarting on the next
// Request; a terminal failure is delivered to the subscriber and returned
// so the errgroup records it for Close.
func (ss *sourceSubscription) fetchLoop() error {
	for {
		ss.mu.Lock()
		if ss.cancelled || ss.done {
			ss.fetching = false
			ss.mu.Unlock()
			return nil
		}
		d := ss.demand
		if !d.Positive() {
			ss.fetching = false
			ss.mu.Unlock()
			return nil
		}
		batch := ss.src.cfg.FetchBatch
		if !d.IsUnlimited() && uint64(d) < uint64(batch) {
			batch = int(d)
		}
		ss.mu.Unlock()

		if err := ss.ctx.Err(); err != nil {
			return nil
		}

		msgs, err := ss.src.consumer.Fetch(batch,
			jetstream.FetchMaxWait(ss.src.cfg.FetchTimeout.Std()))
		if ss.src.metrics != nil {
			ss.src.metrics.BridgeFetches.Inc()
		}
		if err != nil {
			if stderrors.Is(err, context.DeadlineExceeded) ||
				stderrors.Is(err, nats.ErrTimeout) {
				continue
			}
			werr := errors.WrapTransient(err, "Source", "fetchLoop", "fetch batch")
			ss.fail(werr)
			return werr
		}

		for msg := range msgs.Messages() {
			ss.mu.Lock()
			if ss.cancelled || ss.done {
				ss.mu.Unlock()
				return nil
			}
			ss.demand = ss.demand.Sub(stream.Exactly(1))
			ss.mu.Unlock()

			granted := ss.sub.OnNext(msg.Data())
			if err := msg.Ack(); err != nil {
				ss.src.logger.Warn("ack failed", slog.Any("error", err))
			}

			if granted.Positive() {
				ss.mu.Lock()
				ss.demand = ss.demand.Add(granted)
				ss.mu.Unlock()
			}
		}
		if err := msgs.Error(); err != nil &&
			!stderrors.Is(err, nats.ErrTimeout) &&
			!stderrors.Is(err, context.DeadlineExceeded) {
			werr := errors.WrapTransient(err, "Source", "fetchLoop", "drain batch")
			ss.fail(werr)
			return werr
		}
	}
}

// fail delivers a failure completion exactly once.
func (ss *sourceSubscription) fail(err error) {
	ss.mu.Lock()
	if ss.cancelled || ss.done {
		ss.mu.Unlock()
		return
	}
	ss.done = true
	ss.fetching = false
	ss.mu.Unlock()

	ss.src.logger.Error("source failed", slog.Any("error", err))
	ss.sub.OnComplete(err)
	ss.cancel()
}
