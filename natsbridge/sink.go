package natsbridge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/c360/pushstream/errors"
	"github.com/c360/pushstream/metric"
	"github.com/c360/pushstream/stream"
)

// Sink is a subscriber that publishes every received value to a NATS
// subject. It keeps a fixed window of demand outstanding upstream and
// replenishes the window through OnNext return values, so a fast upstream
// can never run further ahead than the window.
type Sink struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metric.Metrics
	conn    *nats.Conn
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	subscription stream.Subscription
	remaining    int
	err          error
	completed    bool

	done chan struct{}
}

// NewSink connects to NATS and prepares a sink publishing to the
// configured subject.
func NewSink(cfg Config, options ...Option) (*Sink, error) {
	cfg.applyDefaults()
	if err := cfg.ValidateSink(); err != nil {
		return nil, err
	}

	opts := applyBridgeOptions(options...)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Sink{
		cfg:     cfg,
		logger:  opts.logger,
		metrics: opts.metrics,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if cfg.PublishRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.PublishRate), cfg.PublishBurst)
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name+"-sink"),
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
		cancel()
		return nil, errors.WrapTransient(err, "Sink", "NewSink", "connect")
	}
	s.conn = conn

	if s.metrics != nil {
		s.metrics.BridgeConnected.Set(1)
	}
	s.logger.Info("sink connected",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.PublishSubject))

	return s, nil
}

// OnSubscribe stores the subscription and requests the initial window.
func (s *Sink) OnSubscribe(sub stream.Subscription) {
	s.mu.Lock()
	s.subscription = sub
	s.remaining = s.cfg.SinkWindow
	window := s.remaining
	s.mu.Unlock()

	sub.Request(stream.Exactly(window))
}

// OnNext publishes the value. When the demand window is exhausted it
// returns a full window of replenished demand; otherwise it returns None.
func (s *Sink) OnNext(data []byte) stream.Demand {
	if s.limiter != nil {
		if err := s.limiter.Wait(s.ctx); err != nil {
			// Sink is shutting down; stop the stream.
			s.cancelUpstream()
			return stream.None
		}
	}

	if err := s.conn.Publish(s.cfg.PublishSubject, data); err != nil {
		s.logger.Error("publish failed",
			slog.String("subject", s.cfg.PublishSubject),
			slog.Any("error", err))
		s.recordErr(errors.WrapTransient(err, "Sink", "OnNext", "publish"))
		s.cancelUpstream()
		return stream.None
	}
	if s.metrics != nil {
		s.metrics.BridgePublishes.Inc()
	}

	s.mu.Lock()
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = s.cfg.SinkWindow
		window := s.remaining
		s.mu.Unlock()
		return stream.Exactly(window)
	}
	s.mu.Unlock()
	return stream.None
}

// OnComplete flushes pending publishes and records the terminal outcome.
func (s *Sink) OnComplete(err error) {
	if ferr := s.conn.Flush(); ferr != nil {
		s.logger.Warn("flush failed", slog.Any("error", ferr))
	}

	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return
	}
	s.completed = true
	if err != nil && s.err == nil {
		s.err = err
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("stream failed", slog.Any("error", err))
	} else {
		s.logger.Info("stream completed")
	}
	close(s.done)
}

// Done is closed when the stream terminates.
func (s *Sink) Done() <-chan struct{} {
	return s.done
}

// Err returns the terminal error, if any, once Done is closed.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the upstream subscription and drains the connection.
func (s *Sink) Close() error {
	s.cancel()
	s.cancelUpstream()
	if s.metrics != nil {
		s.metrics.BridgeConnected.Set(0)
	}
	if err := s.conn.Drain(); err != nil {
		return errors.WrapTransient(err, "Sink", "Close", "drain connection")
	}
	return nil
}

func (s *Sink) cancelUpstream() {
	s.mu.Lock()
	sub := s.subscription
	s.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

func (s *Sink) recordErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}
