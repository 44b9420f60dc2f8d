// Package natsbridge connects push-based streams to NATS JetStream.
//
// # Overview
//
// The bridge has two halves:
//
//   - Source: a publisher backed by a JetStream pull consumer. Downstream
//     demand drives the pull loop, so a slow pipeline never over-fetches.
//     Messages are acknowledged only after delivery.
//   - Sink: a subscriber that publishes every value to a NATS subject,
//     keeping a bounded demand window outstanding upstream.
//
// A typical pipeline couples the two through a buffer:
//
//	src, err := natsbridge.NewSource(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer src.Close()
//
//	buf, err := buffer.New[[]byte](src, 256, buffer.KeepFull, buffer.DropOldest)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sink, err := natsbridge.NewSink(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sink.Close()
//
//	buf.Subscribe(sink)
//	<-sink.Done()
//
// # Configuration
//
// Config is loaded from YAML via LoadConfig or built in code; zero-valued
// fields are filled from DefaultConfig. The source needs url, stream, and
// subject; the sink needs url and publish_subject.
//
// # Delivery Semantics
//
// The source acknowledges a message after the subscriber's OnNext returns.
// A crash between fetch and ack leaves the message unacknowledged, so
// JetStream redelivers it: the bridge is at-least-once, and consumers must
// tolerate duplicates.
package natsbridge
