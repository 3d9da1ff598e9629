// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
)

// Transport names.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// ErrClosed is returned when publishing after Close.
var ErrClosed = errors.New("publisher is closed")

// ErrSubscribeUnsupported is returned by Subscribe on the NATS transport.
var ErrSubscribeUnsupported = errors.New("subscribe is only supported on the gochannel transport")

// Publisher sends job events. A nil *Publisher drops every event.
type Publisher struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	transport  string

	mu     sync.RWMutex
	closed bool
}

// New creates the publisher selected by cfg: NATS when enabled, otherwise an
// in-process GoChannel.
func New(cfg *config.NATSConfig) (*Publisher, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger("events"))
	if cfg == nil || !cfg.Enabled {
		return newGoChannel(logger), nil
	}

	natsOpts := []natsgo.Option{
		natsgo.Name(cfg.ClientName),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled: true,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill NATS publisher: %w", err)
	}

	logging.Info().Str("url", cfg.URL).Msg("Publishing job events to NATS")
	return &Publisher{publisher: pub, transport: TransportNATS}, nil
}

// NewGoChannel creates an in-process publisher. Subscribe works on it.
func NewGoChannel() *Publisher {
	return newGoChannel(watermill.NewSlogLogger(logging.NewSlogLogger("events")))
}

func newGoChannel(logger watermill.LoggerAdapter) *Publisher {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
	return &Publisher{publisher: pubSub, subscriber: pubSub, transport: TransportGoChannel}
}

// Transport returns the transport name.
func (p *Publisher) Transport() string {
	if p == nil {
		return ""
	}
	return p.transport
}

// Subscribe returns the messages published on topic (GoChannel only).
func (p *Publisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if p == nil || p.subscriber == nil {
		return nil, ErrSubscribeUnsupported
	}
	return p.subscriber.Subscribe(ctx, topic)
}

// PublishJobCompleted publishes a JobCompleted event.
func (p *Publisher) PublishJobCompleted(ctx context.Context, ev JobCompleted) error {
	if ev.EventID == "" {
		ev.EventID = newEventID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}
	return p.publish(ctx, TopicJobCompleted, ev.EventID, ev)
}

// PublishMediaBlacklisted publishes a MediaBlacklisted event.
func (p *Publisher) PublishMediaBlacklisted(ctx context.Context, ev MediaBlacklisted) error {
	if ev.EventID == "" {
		ev.EventID = newEventID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}
	return p.publish(ctx, TopicMediaBlacklisted, ev.EventID, ev)
}

func (p *Publisher) publish(ctx context.Context, topic, id string, payload interface{}) (err error) {
	if p == nil {
		return nil
	}
	defer func() { metrics.RecordEventPublished(topic, err) }()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serialize %s event: %w", topic, err)
	}

	msg := message.NewMessage(id, data)
	msg.Metadata.Set("content_type", "application/json")
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		msg.Metadata.Set("correlation_id", cid)
	}
	msg.SetContext(ctx)

	if err = p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close shuts the publisher down. It is safe to call more than once.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
