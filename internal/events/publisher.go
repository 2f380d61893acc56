// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build nats

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
)

// Publisher wraps a Watermill NATS publisher with circuit breaker
// protection. It publishes progress events with the event UUID as
// Nats-Msg-Id so JetStream deduplicates retried publishes.
type Publisher struct {
	publisher      message.Publisher
	serializer     *Serializer
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	mu             sync.RWMutex
	closed         bool
	events         *logging.EventLogger
}

// NewPublisher creates a JetStream publisher against cfg.URL. The
// stream must already exist; provisioning belongs to StreamManager.
func NewPublisher(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // stream is pre-created by StreamManager
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{
		publisher:  pub,
		serializer: NewSerializer(),
		events:     logging.NewEventLogger(),
	}, nil
}

// SetCircuitBreaker guards publish operations. Optional.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) {
	p.circuitBreaker = cb
}

// Publish sends one message, setting Nats-Msg-Id from the message UUID
// when absent.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	var err error
	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}

	if err == nil {
		metrics.RecordNATSPublish()
	}
	return err
}

// PublishEvent serializes and publishes one progress event on its topic.
func (p *Publisher) PublishEvent(ctx context.Context, event *ProgressEvent) error {
	data, err := p.serializer.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("event_type", event.Type)

	if err := p.Publish(ctx, event.Topic(), msg); err != nil {
		p.events.LogEventFailed(ctx, event.EventID, err)
		return err
	}
	p.events.LogEventPublished(ctx, event.EventID, event.Topic())
	return nil
}

// PublishIndexProgress publishes one indexing progress snapshot.
// Signature-compatible with the indexer's progress sink so the server
// wiring can attach the publisher through a small adapter.
func (p *Publisher) PublishIndexProgress(ctx context.Context, stats models.IndexStats, completed bool) error {
	return p.PublishEvent(ctx, NewIndexEvent(stats, completed))
}

// PublishImportCompleted publishes one import completion event.
func (p *Publisher) PublishImportCompleted(ctx context.Context, stats models.ImportStats) error {
	return p.PublishEvent(ctx, NewImportEvent(stats))
}

// Close shuts down the publisher. Safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
